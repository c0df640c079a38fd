package grpc

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/workledger/workledger-backend/internal/domain"
	"github.com/workledger/workledger-backend/internal/usecase/checkout"
	"github.com/workledger/workledger-backend/internal/usecase/completion"
	"github.com/workledger/workledger-backend/internal/usecase/dashboard"
)

// Server implements the LedgerService gRPC server
type Server struct {
	CompletionService *completion.CompletionService
	CheckoutService   *checkout.CheckoutService
	DashboardService  *dashboard.DashboardService
}

// NewServer creates a new gRPC server instance
func NewServer(
	completionService *completion.CompletionService,
	checkoutService *checkout.CheckoutService,
	dashboardService *dashboard.DashboardService,
) *Server {
	return &Server{
		CompletionService: completionService,
		CheckoutService:   checkoutService,
		DashboardService:  dashboardService,
	}
}

// SetTaskStatus handles the SetTaskStatus RPC
func (s *Server) SetTaskStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	taskID, err := uuidField(req, "task_id")
	if err != nil {
		return nil, err
	}

	result, err := s.CompletionService.SetTaskStatus(ctx, taskID, stringField(req, "status"))
	if err != nil {
		return nil, mapError(err)
	}

	if result.AlreadyCompleted {
		return newStruct(map[string]any{"message": "Task already completed"})
	}
	return newStruct(map[string]any{"success": true, "credited": result.Credited})
}

// CreateCheckoutRequest handles the CreateCheckoutRequest RPC
func (s *Server) CreateCheckoutRequest(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := uuidField(req, "user_id")
	if err != nil {
		return nil, err
	}

	// Amounts travel as decimal strings to keep them exact
	amount, err := decimal.NewFromString(stringField(req, "amount"))
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid amount format: %v", err)
	}

	created, err := s.CheckoutService.CreateCheckoutRequest(ctx, checkout.CreateCheckoutInput{
		UserID: userID,
		Amount: amount,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return newStruct(map[string]any{"id": created.ID.String(), "success": true})
}

// ApproveCheckoutRequest handles the ApproveCheckoutRequest RPC
func (s *Server) ApproveCheckoutRequest(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := uuidField(req, "id")
	if err != nil {
		return nil, err
	}

	if _, err := s.CheckoutService.ApproveCheckoutRequest(ctx, id, stringField(req, "transaction_number")); err != nil {
		return nil, mapError(err)
	}

	return newStruct(map[string]any{"success": true})
}

// RejectCheckoutRequest handles the RejectCheckoutRequest RPC
func (s *Server) RejectCheckoutRequest(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := uuidField(req, "id")
	if err != nil {
		return nil, err
	}

	rejected, err := s.CheckoutService.RejectCheckoutRequest(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}

	return newStruct(map[string]any{"success": true, "refunded": rejected.Refunded})
}

// GetAccount handles the GetAccount RPC
func (s *Server) GetAccount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := uuidField(req, "user_id")
	if err != nil {
		return nil, err
	}

	summary, err := s.DashboardService.GetAccountSummary(ctx, userID)
	if err != nil {
		return nil, mapError(err)
	}

	return newStruct(map[string]any{
		"id":                summary.Account.ID.String(),
		"full_name":         summary.Account.FullName,
		"account_balance":   summary.Account.Balance.StringFixed(domain.MoneyScale),
		"reserved":          summary.Reserved.StringFixed(domain.MoneyScale),
		"task_count":        summary.TaskCount,
		"completed_tasks":   summary.CompletedTasks,
		"checkout_count":    summary.CheckoutCount,
		"pending_checkouts": summary.PendingCheckouts,
	})
}

func stringField(req *structpb.Struct, key string) string {
	return req.GetFields()[key].GetStringValue()
}

func uuidField(req *structpb.Struct, key string) (uuid.UUID, error) {
	id, err := uuid.Parse(stringField(req, key))
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", key, err)
	}
	return id, nil
}

func newStruct(fields map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to build response: %v", err)
	}
	return out, nil
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrInsufficientBalance), errors.Is(err, domain.ErrAlreadyProcessed):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
