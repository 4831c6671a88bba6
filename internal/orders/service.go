package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/printmade/printshop-backend/pkg/db/models"
	"github.com/printmade/printshop-backend/pkg/enums"
	pkgerrors "github.com/printmade/printshop-backend/pkg/errors"
)

// Service exposes order reads for customers and the admin status surface.
type Service interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	GetForUser(ctx context.Context, userID uuid.UUID, role enums.UserRole, orderID uuid.UUID) (*models.Order, error)
	AdminList(ctx context.Context) ([]models.Order, error)
	AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*models.Order, error)
}

type service struct {
	repo Repository
}

// NewService builds an orders service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func (s *service) GetForUser(ctx context.Context, userID uuid.UUID, role enums.UserRole, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.repo.Find(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.UserID != userID && role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
	}
	return order, nil
}

func (s *service) AdminList(ctx context.Context) ([]models.Order, error) {
	list, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

// AdminUpdateStatus writes any non-empty status. Operational values outside
// the known enum set are allowed, the data model treats status as free text.
func (s *service) AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status required")
	}

	if err := s.repo.UpdateStatus(ctx, orderID, status); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}

	order, err := s.repo.Find(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
	}
	return order, nil
}
