package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const questionColumns = `q.id, q.category_id, c.name, q.question_number, q.question_text, q.answer_text, q.keywords, q.created_at, q.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner) (Question, error) {
	var (
		q              Question
		categoryID     sql.NullInt64
		categoryName   sql.NullString
		questionNumber sql.NullString
		keywords       sql.NullString
		createdAt      int64
		updatedAt      int64
	)
	if err := row.Scan(&q.ID, &categoryID, &categoryName, &questionNumber, &q.QuestionText, &q.AnswerText, &keywords, &createdAt, &updatedAt); err != nil {
		return Question{}, err
	}
	q.CategoryID = int64Ptr(categoryID)
	q.CategoryName = stringPtr(categoryName)
	q.QuestionNumber = stringPtr(questionNumber)
	q.Keywords = stringPtr(keywords)
	q.CreatedAt = fromMillis(createdAt)
	q.UpdatedAt = fromMillis(updatedAt)
	return q, nil
}

func collectQuestions(rows *sql.Rows) ([]Question, error) {
	defer rows.Close()

	questions := make([]Question, 0)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question row: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *SQLiteStore) GetQuestion(ctx context.Context, id int64) (*Question, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+questionColumns+`
		 FROM questions q
		 LEFT JOIN categories c ON q.category_id = c.id
		 WHERE q.id = ?`, id)
	q, err := scanQuestion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get question %d: %w", id, err)
	}
	return &q, nil
}

// ListQuestions returns one page in insertion (id) order.
func (s *SQLiteStore) ListQuestions(ctx context.Context, filter QuestionFilter, limit, offset int) ([]Question, error) {
	p := (&predicate{}).withFilter(filter)
	query := `SELECT ` + questionColumns + `
		FROM questions q
		LEFT JOIN categories c ON q.category_id = c.id` + p.where() + `
		ORDER BY q.id ASC
		LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, query, append(p.args, limit, offset)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	return collectQuestions(rows)
}

func (s *SQLiteStore) CountQuestions(ctx context.Context, filter QuestionFilter) (int, error) {
	p := (&predicate{}).withFilter(filter)
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions q`+p.where(), p.args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return total, nil
}

// SearchQuestions runs a full-text match ordered by relevance, best first.
// An input with no searchable terms matches nothing.
func (s *SQLiteStore) SearchQuestions(ctx context.Context, text string, filter QuestionFilter, limit int) ([]Question, error) {
	match := matchExpression(text)
	if match == "" {
		return make([]Question, 0), nil
	}

	// The match is materialized first so the planner can never turn the FTS
	// table into the inner side of a docid lookup, where MATCH is unusable.
	p := (&predicate{}).withFilter(filter)
	query := `WITH hits AS MATERIALIZED (
			SELECT docid, qrank(matchinfo(questions_fts)) AS score
			FROM questions_fts
			WHERE questions_fts MATCH ?
		)
		SELECT ` + questionColumns + `
		FROM hits
		JOIN questions q ON q.id = hits.docid
		LEFT JOIN categories c ON q.category_id = c.id` + p.where() + `
		ORDER BY hits.score DESC, q.id ASC
		LIMIT ?`

	args := append([]any{match}, p.args...)
	rows, err := s.db.QueryContext(ctx, query, append(args, limit)...)
	if err != nil {
		return nil, fmt.Errorf("failed to search questions: %w", err)
	}
	return collectQuestions(rows)
}

func (s *SQLiteStore) CreateQuestion(ctx context.Context, in QuestionFields) (int64, error) {
	now := nowMillis()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO questions (category_id, question_number, question_text, answer_text, keywords, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		nullableInt(in.CategoryID),
		nullableString(in.QuestionNumber),
		in.QuestionText,
		in.AnswerText,
		nullableString(in.Keywords),
		now,
		now,
	)
	if err != nil {
		if mapped := classify(err); mapped != nil {
			return 0, fmt.Errorf("failed to insert question: %w", mapped)
		}
		return 0, fmt.Errorf("failed to insert question: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read question id: %w", err)
	}
	return id, nil
}

// UpdateQuestion replaces every mutable field. updated_at always moves
// forward, even when two updates land in the same millisecond.
func (s *SQLiteStore) UpdateQuestion(ctx context.Context, id int64, in QuestionFields) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE questions
		 SET category_id = ?, question_number = ?, question_text = ?, answer_text = ?, keywords = ?,
		     updated_at = MAX(?, updated_at + 1)
		 WHERE id = ?`,
		nullableInt(in.CategoryID),
		nullableString(in.QuestionNumber),
		in.QuestionText,
		in.AnswerText,
		nullableString(in.Keywords),
		nowMillis(),
		id,
	)
	if err != nil {
		if mapped := classify(err); mapped != nil {
			return fmt.Errorf("failed to update question %d: %w", id, mapped)
		}
		return fmt.Errorf("failed to update question %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteQuestion(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM questions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete question %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
