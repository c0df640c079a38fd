package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/workledger/workledger-backend/internal/domain"
	"github.com/workledger/workledger-backend/internal/usecase/assignment"
	"github.com/workledger/workledger-backend/internal/usecase/checkout"
	"github.com/workledger/workledger-backend/internal/usecase/completion"
	"github.com/workledger/workledger-backend/internal/usecase/dashboard"
)

// Handler serves the ledger's HTTP API
type Handler struct {
	CompletionService *completion.CompletionService
	CheckoutService   *checkout.CheckoutService
	DashboardService  *dashboard.DashboardService
	AssignmentService *assignment.AssignmentService

	logger *slog.Logger
}

// NewHandler creates a new Handler instance
func NewHandler(
	completionService *completion.CompletionService,
	checkoutService *checkout.CheckoutService,
	dashboardService *dashboard.DashboardService,
	assignmentService *assignment.AssignmentService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		CompletionService: completionService,
		CheckoutService:   checkoutService,
		DashboardService:  dashboardService,
		AssignmentService: assignmentService,
		logger:            logger,
	}
}

// SetTaskStatus handles POST /task/status
func (h *Handler) SetTaskStatus(w http.ResponseWriter, r *http.Request) {
	var req setTaskStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.CompletionService.SetTaskStatus(r.Context(), req.TaskID, req.Status)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if result.AlreadyCompleted {
		writeJSON(w, http.StatusOK, messageResponse{Message: "Task already completed"})
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// CreateCheckoutRequest handles POST /checkout_requests
func (h *Handler) CreateCheckoutRequest(w http.ResponseWriter, r *http.Request) {
	var req createCheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	created, err := h.CheckoutService.CreateCheckoutRequest(r.Context(), checkout.CreateCheckoutInput{
		UserID: req.UserID,
		Amount: req.Amount,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, createdResponse{ID: created.ID, Success: true})
}

// ApproveCheckoutRequest handles POST /checkout_request/{id}/approve
func (h *Handler) ApproveCheckoutRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req approveCheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if _, err := h.CheckoutService.ApproveCheckoutRequest(r.Context(), id, req.TransactionNumber); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// RejectCheckoutRequest handles POST /checkout_request/{id}/reject. The body is ignored.
func (h *Handler) RejectCheckoutRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if _, err := h.CheckoutService.RejectCheckoutRequest(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// CreateTask handles POST /tasks
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	task, err := h.AssignmentService.AssignTask(r.Context(), assignment.AssignTaskInput{
		Title:      req.Title,
		Cost:       req.Cost,
		AssignedTo: req.AssignedTo,
		Status:     req.Status,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, createdResponse{ID: task.ID, Success: true})
}

// CreateAccount handles POST /users
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	account, err := h.AssignmentService.RegisterAccount(r.Context(), req.FullName)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, createdResponse{ID: account.ID, Success: true})
}

// GetAccount handles GET /user/{id}
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	summary, err := h.DashboardService.GetAccountSummary(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(summary))
}

// ListTasks handles GET /user/{id}/tasks
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	tasks, err := h.DashboardService.ListTasks(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponses(tasks))
}

// ListCheckouts handles GET /user/{id}/withdrawals
func (h *Handler) ListCheckouts(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	requests, err := h.DashboardService.ListCheckouts(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toCheckoutResponses(requests))
}

func pathID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s: %v", domain.ErrValidation, param, err)
	}
	return id, nil
}
