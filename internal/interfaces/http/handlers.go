package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/keonhq/taskflow/internal/application/port"
	"github.com/keonhq/taskflow/internal/application/service"
	"github.com/keonhq/taskflow/internal/domain/workflow"
	"github.com/keonhq/taskflow/internal/report"
)

// Handlers bundles the HTTP handlers over the application services
type Handlers struct {
	requests      *service.RequestService
	validations   *service.ValidationService
	materials     *service.MaterialService
	recurrence    *service.RecurrenceService
	templates     *service.TemplateService
	notifications *service.NotificationService
	audits        *service.AuditService
	workload      *report.WorkloadReporter
}

// NewHandlers creates the handler set
func NewHandlers(
	requests *service.RequestService,
	validations *service.ValidationService,
	materials *service.MaterialService,
	recurrence *service.RecurrenceService,
	templates *service.TemplateService,
	notifications *service.NotificationService,
	audits *service.AuditService,
	workload *report.WorkloadReporter,
) *Handlers {
	return &Handlers{
		requests:      requests,
		validations:   validations,
		materials:     materials,
		recurrence:    recurrence,
		templates:     templates,
		notifications: notifications,
		audits:        audits,
		workload:      workload,
	}
}

// Register wires the routes onto the router group
func (h *Handlers) Register(api *gin.RouterGroup) {
	api.POST("/requests", h.submitRequest)
	api.GET("/requests/:id/order-lines", h.listOrderLines)

	api.GET("/tasks", h.listTasks)
	api.GET("/tasks/:id", h.getTask)
	api.PATCH("/tasks/:id/status", h.updateStatus)
	api.POST("/tasks/:id/request-validation", h.requestValidation)
	api.GET("/tasks/:id/validations", h.listValidations)
	api.GET("/tasks/:id/validations/current", h.currentPendingLevel)
	api.GET("/tasks/:id/checklist", h.listChecklist)
	api.GET("/tasks/:id/history", h.taskHistory)
	api.GET("/references/:reference", h.getByReference)

	api.POST("/validations/:id/validate", h.validateLevel)
	api.POST("/validations/:id/refuse", h.refuseLevel)

	api.PATCH("/checklist/:id", h.toggleChecklistItem)

	api.GET("/notifications/pending", h.listPendingNotifications)
	api.POST("/notifications/:id/sent", h.markNotificationSent)

	api.GET("/reports/workload", h.workloadReport)

	// Server functions keep their original wire contracts, outside the
	// standard envelope.
	api.POST("/functions/validate-material-request", h.validateMaterialRequest)
	api.POST("/functions/process-recurrence", h.processRecurrence)
}

type submitRequestBody struct {
	Title                string                   `json:"title" binding:"required"`
	Description          string                   `json:"description"`
	Priority             string                   `json:"priority"`
	ProcessTemplateID    int64                    `json:"process_template_id" binding:"required"`
	SubProcessTemplateID *int64                   `json:"sub_process_template_id"`
	TargetDepartmentID   *int64                   `json:"target_department_id"`
	TargetManagerID      *int64                   `json:"target_manager_id"`
	DueDate              *time.Time               `json:"due_date"`
	OrderLines           []service.OrderLineInput `json:"order_lines"`
}

func (h *Handlers) submitRequest(c *gin.Context) {
	var body submitRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	request, created, err := h.requests.SubmitRequest(c.Request.Context(), service.SubmitRequestInput{
		Title:                body.Title,
		Description:          body.Description,
		Priority:             body.Priority,
		ProcessTemplateID:    body.ProcessTemplateID,
		SubProcessTemplateID: body.SubProcessTemplateID,
		TargetDepartmentID:   body.TargetDepartmentID,
		TargetManagerID:      body.TargetManagerID,
		RequesterID:          actorFrom(c).ProfileID,
		DueDate:              body.DueDate,
		OrderLines:           body.OrderLines,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, gin.H{"request": request, "tasks_created": created})
}

func (h *Handlers) getTask(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	task, err := h.requests.GetTask(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, task)
}

func (h *Handlers) getByReference(c *gin.Context) {
	task, err := h.requests.GetByReference(c.Request.Context(), c.Param("reference"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, task)
}

func (h *Handlers) listTasks(c *gin.Context) {
	filter := port.TaskFilter{
		Type:            c.Query("type"),
		Status:          c.Query("status"),
		AssigneeID:      queryID(c, "assignee_id"),
		DepartmentID:    queryID(c, "department_id"),
		ParentRequestID: queryID(c, "parent_request_id"),
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	tasks, err := h.requests.ListTasks(c.Request.Context(), filter, limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, tasks)
}

type updateStatusBody struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handlers) updateStatus(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	var body updateStatusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	if err := h.requests.UpdateStatus(c.Request.Context(), id, body.Status, actorFrom(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"id": id, "status": body.Status})
}

func (h *Handlers) requestValidation(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	if err := h.validations.RequestValidation(c.Request.Context(), id, actorFrom(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"id": id, "status": workflow.StatePendingValidation1.String()})
}

func (h *Handlers) listValidations(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	levels, err := h.validations.ListLevels(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, levels)
}

func (h *Handlers) currentPendingLevel(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	level, err := h.validations.CurrentPendingLevel(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, level)
}

type decisionBody struct {
	Comment string `json:"comment"`
}

func (h *Handlers) validateLevel(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	// The comment is optional on approval; an absent body is fine.
	var body decisionBody
	_ = c.ShouldBindJSON(&body)

	if err := h.validations.ValidateLevel(c.Request.Context(), id, actorFrom(c), body.Comment); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"id": id, "status": "validated"})
}

func (h *Handlers) refuseLevel(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	var body decisionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, fmt.Errorf("a refusal comment is required: %w", err))
		return
	}

	if err := h.validations.RefuseLevel(c.Request.Context(), id, actorFrom(c), body.Comment); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"id": id, "status": "refused"})
}

func (h *Handlers) listChecklist(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	items, err := h.requests.ListChecklist(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, items)
}

type toggleChecklistBody struct {
	Completed *bool `json:"completed" binding:"required"`
}

func (h *Handlers) toggleChecklistItem(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	var body toggleChecklistBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	if err := h.requests.ToggleChecklistItem(c.Request.Context(), id, *body.Completed, actorFrom(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"id": id, "completed": *body.Completed})
}

func (h *Handlers) listOrderLines(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	lines, err := h.requests.ListOrderLines(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, lines)
}

func (h *Handlers) taskHistory(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	events, err := h.audits.ListByEntity(c.Request.Context(), c.DefaultQuery("entity_type", "task"), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, events)
}

func (h *Handlers) listPendingNotifications(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	notifications, err := h.notifications.ListPending(c.Request.Context(), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, notifications)
}

func (h *Handlers) markNotificationSent(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	if err := h.notifications.MarkSent(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"id": id})
}

func (h *Handlers) workloadReport(c *gin.Context) {
	file, err := h.workload.Build(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("workload_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := file.Write(c.Writer); err != nil {
		respondError(c, http.StatusInternalServerError, err)
	}
}

// validateMaterialRequest keeps the original server-function wire contract:
// {success, task_id?, message} on success, {error} on failure.
func (h *Handlers) validateMaterialRequest(c *gin.Context) {
	var decision service.MaterialDecision
	if err := c.ShouldBindJSON(&decision); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.materials.Process(c.Request.Context(), decision)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// processRecurrence keeps the original server-function wire contract:
// {processed, results: [{template_id, status, request_id?, error?}]}.
func (h *Handlers) processRecurrence(c *gin.Context) {
	summary, err := h.recurrence.Run(c.Request.Context(), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// respondServiceError maps service errors to HTTP statuses
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondError(c, http.StatusNotFound, err)
	case errors.Is(err, service.ErrUnauthorized):
		respondError(c, http.StatusForbidden, err)
	case errors.Is(err, service.ErrLevelAlreadyDecided):
		respondError(c, http.StatusConflict, err)
	case errors.Is(err, service.ErrNoValidationLevels),
		errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, workflow.ErrInvalidState):
		respondError(c, http.StatusUnprocessableEntity, err)
	default:
		respondError(c, http.StatusInternalServerError, err)
	}
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return id, nil
}

func queryID(c *gin.Context, name string) *int64 {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}
