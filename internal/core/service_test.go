package core

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"questioner.dev/reference-db/internal/store"
)

func newTestServices(t *testing.T) (*QuestionService, *CategoryService) {
	t.Helper()
	db, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "core.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewQuestionService(db), NewCategoryService(db)
}

func strPtr(s string) *string { return &s }
func idPtr(v int64) *int64    { return &v }

func requireValidation(t *testing.T, err error, msg string) {
	t.Helper()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "want ValidationError, got %v", err)
	require.Equal(t, msg, ve.Message)
}

func requireNotFound(t *testing.T, err error) {
	t.Helper()
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf), "want NotFoundError, got %v", err)
}

func TestNormalizePaging(t *testing.T) {
	cases := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 0, 1, 10},
		{-3, -5, 1, 1},
		{2, 25, 2, 25},
		{1, 500, 1, 100},
		{7, 1, 7, 1},
		{math.MaxInt, 100, maxPage, 100},
	}
	for _, tc := range cases {
		page, limit := NormalizePaging(tc.page, tc.limit)
		require.Equal(t, tc.wantPage, page, "page for %+v", tc)
		require.Equal(t, tc.wantLimit, limit, "limit for %+v", tc)
		require.GreaterOrEqual(t, (page-1)*limit, 0, "offset for %+v", tc)
	}
}

func TestPageCount(t *testing.T) {
	require.Equal(t, 0, PageCount(0, 10))
	require.Equal(t, 1, PageCount(10, 10))
	require.Equal(t, 2, PageCount(11, 10))
	require.Equal(t, 4, PageCount(31, 10))
}

func TestParseCategoryFilter(t *testing.T) {
	f, err := ParseCategoryFilter("")
	require.NoError(t, err)
	require.Nil(t, f.CategoryID)

	f, err = ParseCategoryFilter("All")
	require.NoError(t, err)
	require.Nil(t, f.CategoryID)

	f, err = ParseCategoryFilter(" 3 ")
	require.NoError(t, err)
	require.Equal(t, int64(3), *f.CategoryID)

	for _, raw := range []string{"abc", "0", "-1", "1.5"} {
		_, err = ParseCategoryFilter(raw)
		requireValidation(t, err, "Invalid category")
	}
}

func TestCreateCategoryValidation(t *testing.T) {
	_, categories := newTestServices(t)
	ctx := context.Background()

	_, err := categories.CreateCategory(ctx, "   ", nil)
	requireValidation(t, err, "Category name is required")

	_, err = categories.CreateCategory(ctx, strings.Repeat("x", MaxCategoryNameLength+1), nil)
	requireValidation(t, err, "Category name too long")

	id, err := categories.CreateCategory(ctx, "  Algorithms  ", strPtr("  "))
	require.NoError(t, err)
	require.Positive(t, id)

	_, err = categories.CreateCategory(ctx, "Algorithms", nil)
	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	require.Equal(t, "Category name already exists", conflict.Message)

	_, err = categories.CreateCategory(ctx, "algorithms", nil)
	require.NoError(t, err, "names differing only in case are distinct")

	list, err := categories.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "Algorithms", list[0].Name)
	require.Nil(t, list[0].Description, "blank description is stored as NULL")
}

func TestQuestionLifecycle(t *testing.T) {
	questions, categories := newTestServices(t)
	ctx := context.Background()
	catID, err := categories.CreateCategory(ctx, "Data Structures", nil)
	require.NoError(t, err)

	id, err := questions.CreateQuestion(ctx, QuestionInput{
		CategoryID:   idPtr(catID),
		QuestionText: "What is a linked list?",
		AnswerText:   "A sequential data structure...",
		Keywords:     strPtr(" nodes "),
	})
	require.NoError(t, err)

	got, err := questions.GetQuestion(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "What is a linked list?", got.QuestionText)
	require.Equal(t, "nodes", *got.Keywords)

	hits, err := questions.SearchQuestions(ctx, "linked list", "all")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	hits, err = questions.SearchQuestions(ctx, "zzzznotfound", "")
	require.NoError(t, err)
	require.Empty(t, hits)

	err = questions.UpdateQuestion(ctx, id, QuestionInput{QuestionText: "What is a stack?", AnswerText: "LIFO."})
	require.NoError(t, err)
	updated, err := questions.GetQuestion(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "What is a stack?", updated.QuestionText)
	require.Nil(t, updated.CategoryID)
	require.True(t, updated.UpdatedAt.After(got.UpdatedAt))

	require.NoError(t, questions.DeleteQuestion(ctx, id))
	_, err = questions.GetQuestion(ctx, id)
	requireNotFound(t, err)
	requireNotFound(t, questions.DeleteQuestion(ctx, id))
	requireNotFound(t, questions.UpdateQuestion(ctx, id, QuestionInput{QuestionText: "Q", AnswerText: "A"}))
}

func TestQuestionValidation(t *testing.T) {
	questions, _ := newTestServices(t)
	ctx := context.Background()

	_, err := questions.CreateQuestion(ctx, QuestionInput{QuestionText: "Q", AnswerText: " "})
	requireValidation(t, err, "Question text and answer text are required")

	_, err = questions.CreateQuestion(ctx, QuestionInput{QuestionText: strings.Repeat("q", MaxQuestionLength+1), AnswerText: "A"})
	requireValidation(t, err, "Text content too long")

	_, err = questions.CreateQuestion(ctx, QuestionInput{QuestionText: "Q", AnswerText: strings.Repeat("a", MaxAnswerLength+1)})
	requireValidation(t, err, "Text content too long")

	// Limits count characters, not bytes.
	_, err = questions.CreateQuestion(ctx, QuestionInput{QuestionText: strings.Repeat("é", MaxQuestionLength), AnswerText: "A"})
	require.NoError(t, err)

	_, err = questions.CreateQuestion(ctx, QuestionInput{CategoryID: idPtr(99), QuestionText: "Q", AnswerText: "A"})
	requireValidation(t, err, "Category does not exist")

	_, err = questions.CreateQuestion(ctx, QuestionInput{CategoryID: idPtr(0), QuestionText: "Q", AnswerText: "A"})
	requireValidation(t, err, "Invalid category")

	_, err = questions.GetQuestion(ctx, 0)
	requireValidation(t, err, "Invalid question ID")

	_, err = questions.SearchQuestions(ctx, "   ", "")
	requireValidation(t, err, "Search query is required")
}

func TestListQuestionsPagination(t *testing.T) {
	questions, _ := newTestServices(t)
	ctx := context.Background()
	for i := 0; i < 23; i++ {
		_, err := questions.CreateQuestion(ctx, QuestionInput{QuestionText: "Q", AnswerText: "A"})
		require.NoError(t, err)
	}

	first, err := questions.ListQuestions(ctx, ListParams{})
	require.NoError(t, err)
	require.Len(t, first.Questions, 10)
	require.Equal(t, Pagination{Page: 1, Limit: 10, Total: 23, Pages: 3}, first.Pagination)

	last, err := questions.ListQuestions(ctx, ListParams{Page: 3})
	require.NoError(t, err)
	require.Len(t, last.Questions, 3)

	beyond, err := questions.ListQuestions(ctx, ListParams{Page: 9})
	require.NoError(t, err)
	require.Empty(t, beyond.Questions)
	require.Equal(t, 23, beyond.Pagination.Total)

	// Offsets for huge pages must not wrap around to the first page.
	huge, err := questions.ListQuestions(ctx, ListParams{Page: 100000000000000000, Limit: 100})
	require.NoError(t, err)
	require.Empty(t, huge.Questions)
	require.Equal(t, 23, huge.Pagination.Total)
	require.Equal(t, 1, huge.Pagination.Pages)

	_, err = questions.ListQuestions(ctx, ListParams{Category: "nope"})
	requireValidation(t, err, "Invalid category")
}

type failingRepo struct{}

var errDiskGone = errors.New("disk I/O error")

func (failingRepo) GetQuestion(context.Context, int64) (*store.Question, error) {
	return nil, errDiskGone
}
func (failingRepo) ListQuestions(context.Context, store.QuestionFilter, int, int) ([]store.Question, error) {
	return nil, errDiskGone
}
func (failingRepo) CountQuestions(context.Context, store.QuestionFilter) (int, error) {
	return 0, errDiskGone
}
func (failingRepo) SearchQuestions(context.Context, string, store.QuestionFilter, int) ([]store.Question, error) {
	return nil, errDiskGone
}
func (failingRepo) CreateQuestion(context.Context, store.QuestionFields) (int64, error) {
	return 0, errDiskGone
}
func (failingRepo) UpdateQuestion(context.Context, int64, store.QuestionFields) error {
	return errDiskGone
}
func (failingRepo) DeleteQuestion(context.Context, int64) error { return errDiskGone }

func TestStorageErrorsPassThroughWrapped(t *testing.T) {
	questions := NewQuestionService(failingRepo{})
	ctx := context.Background()

	_, err := questions.GetQuestion(ctx, 1)
	require.ErrorIs(t, err, errDiskGone)
	var ve *ValidationError
	require.False(t, errors.As(err, &ve))

	_, err = questions.ListQuestions(ctx, ListParams{})
	require.ErrorIs(t, err, errDiskGone)
	require.ErrorIs(t, questions.DeleteQuestion(ctx, 1), errDiskGone)
}
