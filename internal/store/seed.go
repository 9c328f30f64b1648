package store

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// ApplySeedFiles executes SQL seed files in order. Each file runs only if
// every file before it succeeded; the number of applied files is returned
// together with the first error.
func (s *SQLiteStore) ApplySeedFiles(ctx context.Context, paths []string, onApplied func(path string)) (int, error) {
	applied := 0
	for _, path := range paths {
		contentBytes, err := os.ReadFile(path)
		if err != nil {
			return applied, fmt.Errorf("failed to read seed file %s: %w", path, err)
		}
		script := strings.TrimSpace(string(contentBytes))
		if script == "" {
			return applied, fmt.Errorf("seed file %s is empty", path)
		}

		if err := s.execScript(ctx, script); err != nil {
			return applied, fmt.Errorf("failed to apply seed file %s: %w", path, err)
		}
		applied++
		if onApplied != nil {
			onApplied(path)
		}
	}
	return applied, nil
}

// execScript runs a multi-statement script inside one transaction so a
// failing seed leaves no partial rows behind.
func (s *SQLiteStore) execScript(ctx context.Context, script string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return err
	}
	return tx.Commit()
}
