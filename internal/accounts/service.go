package accounts

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/db/models"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/enums"
	pkgerrors "github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/errors"
)

// Service answers the two questions the ledger asks about a caller: is it a
// business, and is it premium.
type Service interface {
	RequireBusiness(ctx context.Context, businessID uuid.UUID) (*models.Account, error)
	IsPremium(ctx context.Context, businessID uuid.UUID) (bool, error)
}

type finder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
}

type service struct {
	repo finder
}

func NewService(repo finder) (Service, error) {
	if repo == nil {
		return nil, errors.New("account repository required")
	}
	return &service{repo: repo}, nil
}

// RequireBusiness returns NOT_AUTHORIZED unless businessID names a business account.
func (s *service) RequireBusiness(ctx context.Context, businessID uuid.UUID) (*models.Account, error) {
	if businessID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotAuthorized, "business account required")
	}
	account, err := s.repo.FindByID(ctx, businessID)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotAuthorized, "business account required")
		}
		return nil, err
	}
	if account.Role != enums.AccountRoleBusiness {
		return nil, pkgerrors.New(pkgerrors.CodeNotAuthorized, "business account required")
	}
	return account, nil
}

func (s *service) IsPremium(ctx context.Context, businessID uuid.UUID) (bool, error) {
	account, err := s.RequireBusiness(ctx, businessID)
	if err != nil {
		return false, err
	}
	return account.Premium, nil
}
