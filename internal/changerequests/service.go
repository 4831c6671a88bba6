package changerequests

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/printmade/printshop-backend/pkg/db"
	"github.com/printmade/printshop-backend/pkg/db/models"
	"github.com/printmade/printshop-backend/pkg/enums"
	pkgerrors "github.com/printmade/printshop-backend/pkg/errors"
	"github.com/printmade/printshop-backend/pkg/types"
)

const pendingIndexName = "idx_change_requests_pending_order"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CreateInput carries a customer's request to change a placed order.
type CreateInput struct {
	OrderID     uuid.UUID
	RequestedBy uuid.UUID
	Role        enums.UserRole
	ChangeType  string
	Details     types.JSONMap
}

// ReviewInput carries the admin decision on a pending request.
type ReviewInput struct {
	RequestID  uuid.UUID
	Status     enums.ChangeRequestStatus
	AdminNotes *string
}

// Service runs the request/review workflow for order changes.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.OrderChangeRequest, error)
	Review(ctx context.Context, input ReviewInput) (*models.OrderChangeRequest, error)
	ListPending(ctx context.Context) ([]models.OrderChangeRequest, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.OrderChangeRequest, error)
	Get(ctx context.Context, userID uuid.UUID, role enums.UserRole, id uuid.UUID) (*models.OrderChangeRequest, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds a change request service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("change request repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.OrderChangeRequest, error) {
	if input.RequestedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	changeType := strings.ToUpper(strings.TrimSpace(input.ChangeType))
	if changeType == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "change type required")
	}

	var out *models.OrderChangeRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.UserID != input.RequestedBy && input.Role != enums.UserRoleAdmin {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
		}

		request := &models.OrderChangeRequest{
			ID:            uuid.New(),
			OrderID:       input.OrderID,
			RequestedBy:   input.RequestedBy,
			ChangeType:    changeType,
			ChangeDetails: input.Details,
			Status:        enums.ChangeRequestStatusPending,
		}
		created, err := repo.Create(ctx, request)
		if err != nil {
			// partial unique index: one PENDING request per order
			if db.IsUniqueViolation(err, pendingIndexName) {
				return pkgerrors.New(pkgerrors.CodeConflict, "order already has a pending change request")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create change request")
		}
		out = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) Review(ctx context.Context, input ReviewInput) (*models.OrderChangeRequest, error) {
	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if !input.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "review status must be APPROVED or REJECTED")
	}

	var out *models.OrderChangeRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		request, err := repo.Find(ctx, input.RequestID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "change request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load change request")
		}
		if request.Status != enums.ChangeRequestStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "change request already reviewed")
		}

		if err := repo.UpdateReview(ctx, request.ID, input.Status, input.AdminNotes); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update change request")
		}

		// approved cancellations cascade into the order
		if input.Status == enums.ChangeRequestStatusApproved && request.ChangeType == models.ChangeTypeCancel {
			if err := repo.UpdateOrderStatus(ctx, request.OrderID, enums.OrderStatusCancelled); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
			}
		}

		reloaded, err := repo.Find(ctx, request.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload change request")
		}
		out = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) ListPending(ctx context.Context) ([]models.OrderChangeRequest, error) {
	list, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list change requests")
	}
	return list, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.OrderChangeRequest, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list change requests")
	}
	return list, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID, role enums.UserRole, id uuid.UUID) (*models.OrderChangeRequest, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	request, err := s.repo.Find(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "change request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load change request")
	}
	if request.RequestedBy != userID && role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "change request does not belong to user")
	}
	return request, nil
}
