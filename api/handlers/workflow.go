package handlers

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/BaSui01/agentweave/store"
	"github.com/BaSui01/agentweave/types"
	"github.com/BaSui01/agentweave/workflow"
)

// WorkflowService is the orchestration surface the handler exposes.
// Implemented by workflow.Orchestrator.
type WorkflowService interface {
	ExecuteWorkflow(ctx context.Context, def *workflow.Definition, ownerID string) (*workflow.Summary, error)
	GetWorkflowDetails(ctx context.Context, workflowID, ownerID string) (*workflow.Summary, error)
	GetWorkflowHistory(ctx context.Context, ownerID string, limit int) ([]store.WorkflowHeader, error)
	GetWorkflowStatus(ctx context.Context, workflowID, ownerID string) (*workflow.StatusReport, error)
	DeleteWorkflow(ctx context.Context, workflowID, ownerID string) error
}

// WorkflowHandler serves the workflow orchestration endpoints.
type WorkflowHandler struct {
	service WorkflowService
	logger  *zap.Logger
}

// NewWorkflowHandler creates a workflow handler.
func NewWorkflowHandler(service WorkflowService, logger *zap.Logger) *WorkflowHandler {
	return &WorkflowHandler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the workflow routes on mux.
func (h *WorkflowHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/workflows/execute", h.HandleExecute)
	mux.HandleFunc("GET /v1/workflows", h.HandleHistory)
	mux.HandleFunc("GET /v1/workflows/{id}", h.HandleDetails)
	mux.HandleFunc("GET /v1/workflows/{id}/status", h.HandleStatus)
	mux.HandleFunc("DELETE /v1/workflows/{id}", h.HandleDelete)
}

// HandleExecute validates and runs a workflow definition.
func (h *WorkflowHandler) HandleExecute(w http.ResponseWriter, r *http.Request) {
	ownerID := OwnerID(r)
	if ownerID == "" {
		WriteErrorMessage(w, http.StatusUnauthorized, types.ErrUnauthorized, "caller identity is required", h.logger)
		return
	}

	var def workflow.Definition
	if err := DecodeJSONBody(w, r, &def, h.logger); err != nil {
		return
	}
	if def.Name == "" {
		WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidRequest, "workflow_name is required", h.logger)
		return
	}

	summary, err := h.service.ExecuteWorkflow(r.Context(), &def, ownerID)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	WriteSuccess(w, summary)
}

// HandleDetails returns the full summary of one workflow.
func (h *WorkflowHandler) HandleDetails(w http.ResponseWriter, r *http.Request) {
	ownerID := OwnerID(r)
	if ownerID == "" {
		WriteErrorMessage(w, http.StatusUnauthorized, types.ErrUnauthorized, "caller identity is required", h.logger)
		return
	}

	workflowID := r.PathValue("id")
	if workflowID == "" {
		WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidRequest, "workflow ID is required", h.logger)
		return
	}

	summary, err := h.service.GetWorkflowDetails(r.Context(), workflowID, ownerID)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	WriteSuccess(w, summary)
}

// HandleStatus returns the lightweight progress view of one workflow.
func (h *WorkflowHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ownerID := OwnerID(r)
	if ownerID == "" {
		WriteErrorMessage(w, http.StatusUnauthorized, types.ErrUnauthorized, "caller identity is required", h.logger)
		return
	}

	workflowID := r.PathValue("id")
	if workflowID == "" {
		WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidRequest, "workflow ID is required", h.logger)
		return
	}

	report, err := h.service.GetWorkflowStatus(r.Context(), workflowID, ownerID)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	WriteSuccess(w, report)
}

// HandleDelete removes one workflow and its steps.
func (h *WorkflowHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ownerID := OwnerID(r)
	if ownerID == "" {
		WriteErrorMessage(w, http.StatusUnauthorized, types.ErrUnauthorized, "caller identity is required", h.logger)
		return
	}

	workflowID := r.PathValue("id")
	if workflowID == "" {
		WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidRequest, "workflow ID is required", h.logger)
		return
	}

	if err := h.service.DeleteWorkflow(r.Context(), workflowID, ownerID); err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	WriteSuccess(w, map[string]string{"workflow_id": workflowID, "status": "deleted"})
}

// HandleHistory lists the caller's workflows by recency.
func (h *WorkflowHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ownerID := OwnerID(r)
	if ownerID == "" {
		WriteErrorMessage(w, http.StatusUnauthorized, types.ErrUnauthorized, "caller identity is required", h.logger)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidRequest, "limit must be a positive integer", h.logger)
			return
		}
		limit = parsed
	}

	headers, err := h.service.GetWorkflowHistory(r.Context(), ownerID, limit)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	WriteSuccess(w, headers)
}
