package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"questioner.dev/reference-db/internal/logger"
	"questioner.dev/reference-db/internal/store"
)

const (
	DefaultPage           = 1
	DefaultPageSize       = 10
	MaxPageSize           = 100
	SearchResultLimit     = 50
	MaxQuestionLength     = 5000
	MaxAnswerLength       = 10000
	allCategoriesSentinel = "all"
)

type QuestionRepository interface {
	GetQuestion(ctx context.Context, id int64) (*store.Question, error)
	ListQuestions(ctx context.Context, filter store.QuestionFilter, limit, offset int) ([]store.Question, error)
	CountQuestions(ctx context.Context, filter store.QuestionFilter) (int, error)
	SearchQuestions(ctx context.Context, text string, filter store.QuestionFilter, limit int) ([]store.Question, error)
	CreateQuestion(ctx context.Context, in store.QuestionFields) (int64, error)
	UpdateQuestion(ctx context.Context, id int64, in store.QuestionFields) error
	DeleteQuestion(ctx context.Context, id int64) error
}

type QuestionService struct {
	repo QuestionRepository
}

func NewQuestionService(repo QuestionRepository) *QuestionService {
	return &QuestionService{repo: repo}
}

// QuestionInput carries the mutable fields of a question as submitted by a client.
type QuestionInput struct {
	CategoryID     *int64
	QuestionNumber *string
	QuestionText   string
	AnswerText     string
	Keywords       *string
}

// ListParams are the raw paging inputs; zero values select the defaults.
type ListParams struct {
	Page     int
	Limit    int
	Category string
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type QuestionPage struct {
	Questions  []store.Question
	Pagination Pagination
}

func (s *QuestionService) GetQuestion(ctx context.Context, id int64) (*store.Question, error) {
	if id <= 0 {
		return nil, invalid("Invalid question ID")
	}
	q, err := s.repo.GetQuestion(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("Question not found")
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return q, nil
}

// ListQuestions returns one page in insertion order together with the
// total row count for the same category predicate.
func (s *QuestionService) ListQuestions(ctx context.Context, params ListParams) (*QuestionPage, error) {
	filter, err := ParseCategoryFilter(params.Category)
	if err != nil {
		return nil, err
	}

	page, limit := NormalizePaging(params.Page, params.Limit)
	offset := (page - 1) * limit

	total, err := s.repo.CountQuestions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}
	questions, err := s.repo.ListQuestions(ctx, filter, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	return &QuestionPage{
		Questions: questions,
		Pagination: Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: PageCount(total, limit),
		},
	}, nil
}

// SearchQuestions runs a relevance-ranked full-text search capped at SearchResultLimit rows.
func (s *QuestionService) SearchQuestions(ctx context.Context, query, category string) ([]store.Question, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalid("Search query is required")
	}
	filter, err := ParseCategoryFilter(category)
	if err != nil {
		return nil, err
	}

	questions, err := s.repo.SearchQuestions(ctx, query, filter, SearchResultLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search questions: %w", err)
	}
	logger.Debugf("Search %q matched %d questions", query, len(questions))
	return questions, nil
}

func (s *QuestionService) CreateQuestion(ctx context.Context, in QuestionInput) (int64, error) {
	fields, err := validateQuestion(in)
	if err != nil {
		return 0, err
	}
	id, err := s.repo.CreateQuestion(ctx, fields)
	if err != nil {
		if errors.Is(err, store.ErrUnknownCategory) {
			return 0, invalid("Category does not exist")
		}
		return 0, fmt.Errorf("failed to create question: %w", err)
	}
	logger.Infof("Created question %d", id)
	return id, nil
}

// UpdateQuestion replaces every mutable field of an existing question.
func (s *QuestionService) UpdateQuestion(ctx context.Context, id int64, in QuestionInput) error {
	if id <= 0 {
		return invalid("Invalid question ID")
	}
	fields, err := validateQuestion(in)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateQuestion(ctx, id, fields); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return notFound("Question not found")
		case errors.Is(err, store.ErrUnknownCategory):
			return invalid("Category does not exist")
		}
		return fmt.Errorf("failed to update question: %w", err)
	}
	logger.Infof("Updated question %d", id)
	return nil
}

func (s *QuestionService) DeleteQuestion(ctx context.Context, id int64) error {
	if id <= 0 {
		return invalid("Invalid question ID")
	}
	if err := s.repo.DeleteQuestion(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("Question not found")
		}
		return fmt.Errorf("failed to delete question: %w", err)
	}
	logger.Infof("Deleted question %d", id)
	return nil
}

func validateQuestion(in QuestionInput) (store.QuestionFields, error) {
	if strings.TrimSpace(in.QuestionText) == "" || strings.TrimSpace(in.AnswerText) == "" {
		return store.QuestionFields{}, invalid("Question text and answer text are required")
	}
	if utf8.RuneCountInString(in.QuestionText) > MaxQuestionLength || utf8.RuneCountInString(in.AnswerText) > MaxAnswerLength {
		return store.QuestionFields{}, invalid("Text content too long")
	}
	if in.CategoryID != nil && *in.CategoryID <= 0 {
		return store.QuestionFields{}, invalid("Invalid category")
	}
	return store.QuestionFields{
		CategoryID:     in.CategoryID,
		QuestionNumber: optionalText(in.QuestionNumber),
		QuestionText:   in.QuestionText,
		AnswerText:     in.AnswerText,
		Keywords:       optionalText(in.Keywords),
	}, nil
}

// ParseCategoryFilter accepts "", "all" or a positive category id.
func ParseCategoryFilter(raw string) (store.QuestionFilter, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, allCategoriesSentinel) {
		return store.QuestionFilter{}, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return store.QuestionFilter{}, invalid("Invalid category")
	}
	return store.QuestionFilter{CategoryID: &id}, nil
}

// maxPage keeps (page-1)*limit within int for every allowed limit.
const maxPage = math.MaxInt / MaxPageSize

// NormalizePaging applies defaults (page 1, limit 10) and clamps page to
// [1, maxPage] and limit to [1, MaxPageSize].
func NormalizePaging(page, limit int) (int, int) {
	page = max(DefaultPage, min(page, maxPage))
	if limit == 0 {
		limit = DefaultPageSize
	}
	limit = max(1, min(limit, MaxPageSize))
	return page, limit
}

func PageCount(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
