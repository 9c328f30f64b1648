package api

import (
	"context"
	"net/http"
	"time"

	"questioner.dev/reference-db/internal/core"
	"questioner.dev/reference-db/internal/logger"
	"questioner.dev/reference-db/internal/store"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type APIHandler struct {
	questions   *core.QuestionService
	categories  *core.CategoryService
	db          Pinger
	environment string
	port        string
	production  bool
}

func NewAPIHandler(qs *core.QuestionService, cs *core.CategoryService, db Pinger, environment, port string, production bool) *APIHandler {
	return &APIHandler{
		questions:   qs,
		categories:  cs,
		db:          db,
		environment: environment,
		port:        port,
		production:  production,
	}
}

type healthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment"`
	Port        string `json:"port"`
}

func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "OK",
		Timestamp:   time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Environment: h.environment,
		Port:        h.port,
	})
}

func (h *APIHandler) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		logger.Warnf("Readiness check failed: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type categoriesResponse struct {
	Categories []store.Category `json:"categories"`
}

func (h *APIHandler) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.ListCategories(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "Database error occurred")
		return
	}
	writeJSON(w, http.StatusOK, categoriesResponse{Categories: categories})
}

func (h *APIHandler) CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, err := h.categories.CreateCategory(r.Context(), req.Name, req.Description)
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to add category")
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Category added successfully", ID: &id})
}

type searchResponse struct {
	Questions []store.Question `json:"questions"`
	Total     int              `json:"total"`
}

func (h *APIHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	questions, err := h.questions.SearchQuestions(r.Context(), query.Get("q"), query.Get("category"))
	if err != nil {
		h.writeServiceError(w, r, err, "Search error occurred")
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{Questions: questions, Total: len(questions)})
}

type questionListResponse struct {
	Questions  []store.Question `json:"questions"`
	Pagination core.Pagination  `json:"pagination"`
}

func (h *APIHandler) ListQuestionsHandler(w http.ResponseWriter, r *http.Request) {
	page, err := h.questions.ListQuestions(r.Context(), core.ListParams{
		Page:     queryInt(r, "page"),
		Limit:    queryInt(r, "limit"),
		Category: r.URL.Query().Get("category"),
	})
	if err != nil {
		h.writeServiceError(w, r, err, "Database error occurred")
		return
	}
	writeJSON(w, http.StatusOK, questionListResponse{Questions: page.Questions, Pagination: page.Pagination})
}

type questionResponse struct {
	Question *store.Question `json:"question"`
}

func (h *APIHandler) GetQuestionHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := questionID(w, r)
	if !ok {
		return
	}
	q, err := h.questions.GetQuestion(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err, "Database error occurred")
		return
	}
	writeJSON(w, http.StatusOK, questionResponse{Question: q})
}

func (h *APIHandler) CreateQuestionHandler(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, err := h.questions.CreateQuestion(r.Context(), req.input())
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to add question")
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Question added successfully", ID: &id})
}

func (h *APIHandler) UpdateQuestionHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := questionID(w, r)
	if !ok {
		return
	}
	var req questionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.questions.UpdateQuestion(r.Context(), id, req.input()); err != nil {
		h.writeServiceError(w, r, err, "Failed to update question")
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Question updated successfully"})
}

func (h *APIHandler) DeleteQuestionHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := questionID(w, r)
	if !ok {
		return
	}
	if err := h.questions.DeleteQuestion(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err, "Failed to delete question")
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Question deleted successfully"})
}
