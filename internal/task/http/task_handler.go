// Package http provides HTTP handlers for task management.
package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/tasks/internal/auth/http"
	apperrors "github.com/allisson/tasks/internal/errors"
	"github.com/allisson/tasks/internal/httputil"
	"github.com/allisson/tasks/internal/task/domain"
	"github.com/allisson/tasks/internal/task/http/dto"
	"github.com/allisson/tasks/internal/task/usecase"
	customValidation "github.com/allisson/tasks/internal/validation"
)

var errInvalidTaskID = errors.New("invalid task ID format: must be a valid UUID")

// TaskHandler serves /api/v1/tasks. Every route requires AuthenticationMiddleware;
// the owner is the access token subject.
type TaskHandler struct {
	taskUseCase usecase.TaskUseCase
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskUseCase usecase.TaskUseCase, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		taskUseCase: taskUseCase,
		logger:      logger,
	}
}

// ListHandler returns one cursor page of the caller's tasks.
// GET /api/v1/tasks?cursor=&page_size=&direction= - 200 OK.
func (h *TaskHandler) ListHandler(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}

	req, err := httputil.ParseCursorPagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	page, err := h.taskUseCase.List(c.Request.Context(), owner, req)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, httputil.NewPageResponse(page, dto.MapTaskToResponse))
}

// CreateHandler creates a task owned by the caller.
// POST /api/v1/tasks - 201 Created.
func (h *TaskHandler) CreateHandler(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	task, err := h.taskUseCase.Create(c.Request.Context(), owner, req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapTaskToResponse(task))
}

// GetHandler returns one of the caller's tasks.
// GET /api/v1/tasks/:id - 200 OK, 404 when missing or owned by someone else.
func (h *TaskHandler) GetHandler(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}

	taskID, ok := h.taskID(c)
	if !ok {
		return
	}

	task, err := h.taskUseCase.Get(c.Request.Context(), taskID, owner)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTaskToResponse(task))
}

// UpdateHandler replaces one of the caller's tasks.
// PUT /api/v1/tasks/:id - 200 OK.
func (h *TaskHandler) UpdateHandler(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}

	taskID, ok := h.taskID(c)
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	task, err := h.taskUseCase.Update(c.Request.Context(), taskID, owner, req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTaskToResponse(task))
}

// DeleteHandler removes one of the caller's tasks.
// DELETE /api/v1/tasks/:id - 204 No Content.
func (h *TaskHandler) DeleteHandler(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}

	taskID, ok := h.taskID(c)
	if !ok {
		return
	}

	if err := h.taskUseCase.Delete(c.Request.Context(), taskID, owner); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

func (h *TaskHandler) owner(c *gin.Context) (uuid.UUID, bool) {
	claims, ok := authHTTP.GetClaims(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return uuid.Nil, false
	}
	if claims.Subject == uuid.Nil {
		httputil.HandleErrorGin(c, domain.ErrOwnerRequired, h.logger)
		return uuid.Nil, false
	}
	return claims.Subject, true
}

func (h *TaskHandler) taskID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, errInvalidTaskID, h.logger)
		return uuid.Nil, false
	}
	return id, true
}
