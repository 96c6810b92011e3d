package handler

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/todofy/todofy/internal/todo"
	"github.com/todofy/todofy/pkg/logger"
	"github.com/todofy/todofy/pkg/metrics"
	"github.com/todofy/todofy/pkg/middleware"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 1000
)

// TodoHandler binds the todo repository to the HTTP surface. It owns input
// validation and the mapping of absent values and repository errors to status
// codes; ownership scoping lives in the repository.
type TodoHandler struct {
	repo todo.Repository
}

func NewTodoHandler(repo todo.Repository) *TodoHandler {
	return &TodoHandler{repo: repo}
}

// Register mounts the todo routes on rg. The caller is expected to guard rg
// with the auth middleware; handlers still refuse requests without a
// principal.
func (h *TodoHandler) Register(rg *gin.RouterGroup) {
	t := rg.Group("/todos")
	t.GET("", h.list)
	t.POST("", h.create)
	t.GET("/:id", h.getByID)
	t.PATCH("/:id", h.update)
	t.DELETE("/:id", h.delete)
	t.POST("/:id/toggle", h.toggle)
	t.DELETE("/completed/all", h.deleteCompleted)
}

type createRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type updateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

func (h *TodoHandler) list(c *gin.Context) {
	owner := middleware.PrincipalID(c)
	if owner == "" {
		respondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	records, err := h.repo.ListByOwner(c.Request.Context(), owner)
	if err != nil {
		h.fail(c, "list", err, "Failed to retrieve todos")
		return
	}
	metrics.TodoOperations.WithLabelValues("list", metrics.OutcomeOK).Inc()
	responses := make([]todo.Response, 0, len(records))
	for i := range records {
		responses = append(responses, records[i].ToResponse())
	}
	respondData(c, http.StatusOK, responses)
}

func (h *TodoHandler) create(c *gin.Context) {
	owner := middleware.PrincipalID(c)
	if owner == "" {
		respondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	if details := validateCreate(title, description); len(details) > 0 {
		respondValidation(c, details)
		return
	}
	rec, err := h.repo.Create(c.Request.Context(), owner, title, description)
	if err != nil {
		h.fail(c, "create", err, "Failed to create todo")
		return
	}
	metrics.TodoOperations.WithLabelValues("create", metrics.OutcomeOK).Inc()
	respondData(c, http.StatusCreated, rec.ToResponse())
}

func (h *TodoHandler) getByID(c *gin.Context) {
	owner := middleware.PrincipalID(c)
	if owner == "" {
		respondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	rec, err := h.repo.GetByID(c.Request.Context(), id, owner)
	if err != nil {
		h.fail(c, "get", err, "Failed to retrieve todo")
		return
	}
	if rec == nil {
		metrics.TodoOperations.WithLabelValues("get", metrics.OutcomeMissing).Inc()
		respondError(c, http.StatusNotFound, "Todo not found")
		return
	}
	metrics.TodoOperations.WithLabelValues("get", metrics.OutcomeOK).Inc()
	respondData(c, http.StatusOK, rec.ToResponse())
}

func (h *TodoHandler) update(c *gin.Context) {
	owner := middleware.PrincipalID(c)
	if owner == "" {
		respondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	in, details := buildUpdateInput(req)
	if len(details) > 0 {
		respondValidation(c, details)
		return
	}
	rec, err := h.repo.Update(c.Request.Context(), id, owner, in)
	if err != nil {
		h.fail(c, "update", err, "Failed to update todo")
		return
	}
	if rec == nil {
		metrics.TodoOperations.WithLabelValues("update", metrics.OutcomeMissing).Inc()
		respondError(c, http.StatusNotFound, "Todo not found")
		return
	}
	metrics.TodoOperations.WithLabelValues("update", metrics.OutcomeOK).Inc()
	respondData(c, http.StatusOK, rec.ToResponse())
}

func (h *TodoHandler) toggle(c *gin.Context) {
	owner := middleware.PrincipalID(c)
	if owner == "" {
		respondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	rec, err := h.repo.ToggleCompletion(c.Request.Context(), id, owner)
	if err != nil {
		h.fail(c, "toggle", err, "Failed to toggle todo")
		return
	}
	if rec == nil {
		metrics.TodoOperations.WithLabelValues("toggle", metrics.OutcomeMissing).Inc()
		respondError(c, http.StatusNotFound, "Todo not found")
		return
	}
	metrics.TodoOperations.WithLabelValues("toggle", metrics.OutcomeOK).Inc()
	respondData(c, http.StatusOK, rec.ToResponse())
}

func (h *TodoHandler) delete(c *gin.Context) {
	owner := middleware.PrincipalID(c)
	if owner == "" {
		respondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	deleted, err := h.repo.Delete(c.Request.Context(), id, owner)
	if err != nil {
		h.fail(c, "delete", err, "Failed to delete todo")
		return
	}
	if !deleted {
		metrics.TodoOperations.WithLabelValues("delete", metrics.OutcomeMissing).Inc()
		respondError(c, http.StatusNotFound, "Todo not found")
		return
	}
	metrics.TodoOperations.WithLabelValues("delete", metrics.OutcomeOK).Inc()
	respondMessage(c, http.StatusOK, "Todo deleted successfully")
}

func (h *TodoHandler) deleteCompleted(c *gin.Context) {
	owner := middleware.PrincipalID(c)
	if owner == "" {
		respondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	n, err := h.repo.DeleteAllCompleted(c.Request.Context(), owner)
	if err != nil {
		h.fail(c, "deleteCompleted", err, "Failed to delete completed todos")
		return
	}
	metrics.TodoOperations.WithLabelValues("deleteCompleted", metrics.OutcomeOK).Inc()
	respondData(c, http.StatusOK, gin.H{"deletedCount": n})
}

// fail logs the repository error and answers with a generic message; the
// underlying cause never reaches the client.
func (h *TodoHandler) fail(c *gin.Context, op string, err error, msg string) {
	metrics.TodoOperations.WithLabelValues(op, metrics.OutcomeError).Inc()
	logger.Errorf("todo %s failed: %v", op, err)
	respondError(c, http.StatusInternalServerError, msg)
}

// parseID validates the 24-hex id path parameter. Responds 400 and returns
// ok=false on malformed input.
func parseID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondValidation(c, map[string]string{"id": "Invalid todo ID format"})
		return primitive.NilObjectID, false
	}
	return id, true
}

func validateCreate(title, description string) map[string]string {
	details := map[string]string{}
	if title == "" {
		details["title"] = "Title is required"
	} else if utf8.RuneCountInString(title) > maxTitleLen {
		details["title"] = "Title must be 200 characters or less"
	}
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		details["description"] = "Description must be 1000 characters or less"
	}
	return details
}

func buildUpdateInput(req updateRequest) (todo.UpdateInput, map[string]string) {
	details := map[string]string{}
	var in todo.UpdateInput
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			details["title"] = "Title must not be empty"
		} else if utf8.RuneCountInString(title) > maxTitleLen {
			details["title"] = "Title must be 200 characters or less"
		}
		in.Title = &title
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if utf8.RuneCountInString(description) > maxDescriptionLen {
			details["description"] = "Description must be 1000 characters or less"
		}
		in.Description = &description
	}
	in.Completed = req.Completed
	if in.Empty() {
		details["_"] = "At least one field is required"
	}
	return in, details
}

func respondData(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{"success": true, "data": data})
}

func respondMessage(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"success": true, "message": msg})
}

func respondError(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"success": false, "error": msg})
}

func respondValidation(c *gin.Context, details map[string]string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Validation failed", "details": details})
}
