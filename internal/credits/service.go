package credits

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/euroisufi/schweizer-handwerksplattform-sub000/internal/catalog"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/internal/ledger"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/internal/projects"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/db/models"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/enums"
	pkgerrors "github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/errors"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/logger"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/metrics"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/outbox/payloads"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/pagination"
)

// Service exposes the credit and unlock operations to the API layer.
type Service interface {
	PreviewPrice(ctx context.Context, projectID uuid.UUID) (int64, error)
	Purchase(ctx context.Context, businessID uuid.UUID, packageID string) (*PurchaseResult, error)
	Unlock(ctx context.Context, businessID, projectID uuid.UUID) (*ledger.UnlockRecord, bool, error)
	Subscribe(ctx context.Context, businessID uuid.UUID, planID string) (*ledger.Subscription, error)
	Cancel(ctx context.Context, businessID uuid.UUID) error
	ListUnlockedContacts(ctx context.Context, businessID uuid.UUID) ([]ledger.UnlockRecord, error)
	Balance(ctx context.Context, businessID uuid.UUID) (int64, error)
	Packages(ctx context.Context, businessID uuid.UUID) ([]catalog.CreditPackage, error)
	Plans() []catalog.Plan
	CurrentSubscription(ctx context.Context, businessID uuid.UUID) (*ledger.Subscription, error)
	ListEntries(ctx context.Context, businessID uuid.UUID, params pagination.Params) ([]ledger.Entry, string, error)
}

type accountChecker interface {
	RequireBusiness(ctx context.Context, businessID uuid.UUID) (*models.Account, error)
}

type projectFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*projects.Project, error)
}

// ServiceParams wires the credits service.
type ServiceParams struct {
	Store            ledger.Store
	Accounts         accountChecker
	Projects         projectFinder
	Catalog          *catalog.Catalog
	Logger           *logger.Logger
	Metrics          *metrics.LedgerMetrics
	MaxUnlocksListed int
}

// PurchaseResult describes a completed package purchase.
type PurchaseResult struct {
	PackageID       string `json:"package_id"`
	BaseCredits     int64  `json:"base_credits"`
	GrantedCredits  int64  `json:"granted_credits"`
	DiscountPercent int    `json:"discount_percent"`
	Balance         int64  `json:"balance"`
}

type service struct {
	store            ledger.Store
	accounts         accountChecker
	projects         projectFinder
	catalog          *catalog.Catalog
	logg             *logger.Logger
	metrics          *metrics.LedgerMetrics
	maxUnlocksListed int
}

func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, errors.New("ledger store required")
	}
	if params.Accounts == nil {
		return nil, errors.New("account service required")
	}
	if params.Projects == nil {
		return nil, errors.New("project repository required")
	}
	if params.Catalog == nil {
		return nil, errors.New("catalog required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	return &service{
		store:            params.Store,
		accounts:         params.Accounts,
		projects:         params.Projects,
		catalog:          params.Catalog,
		logg:             params.Logger,
		metrics:          params.Metrics,
		maxUnlocksListed: params.MaxUnlocksListed,
	}, nil
}

// PreviewPrice returns what an unlock of projectID would cost. It reads only
// the project; no balance or account is touched.
func (s *service) PreviewPrice(ctx context.Context, projectID uuid.UUID) (int64, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return 0, err
	}
	return project.Price(), nil
}

func (s *service) Purchase(ctx context.Context, businessID uuid.UUID, packageID string) (*PurchaseResult, error) {
	account, err := s.accounts.RequireBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}
	pkg, ok := s.catalog.Package(strings.TrimSpace(packageID))
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "credit package not found")
	}

	result := &PurchaseResult{PackageID: pkg.ID, BaseCredits: pkg.CreditsGranted}
	_, err = s.store.Transact(ctx, businessID, func(tx *ledger.Tx) error {
		if pkg.PremiumOnly && !account.Premium && tx.Subscription() == nil {
			return pkgerrors.New(pkgerrors.CodeNotAuthorized, "package requires a premium subscription")
		}
		result.DiscountPercent = tx.PurchaseDiscount()
		result.GrantedCredits = ledger.GrantedCredits(pkg.CreditsGranted, result.DiscountPercent)
		if err := tx.Credit(result.GrantedCredits, enums.LedgerEntryPurchase, pkg.ID); err != nil {
			return err
		}
		result.Balance = tx.Balance()
		tx.Emit(enums.EventCreditsPurchased, payloads.CreditsPurchasedEvent{
			BusinessID:      businessID,
			PackageID:       pkg.ID,
			BaseCredits:     pkg.CreditsGranted,
			GrantedCredits:  result.GrantedCredits,
			DiscountPercent: result.DiscountPercent,
			BalanceAfter:    result.Balance,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AddCredited(string(enums.LedgerEntryPurchase), result.GrantedCredits)
	logCtx := s.logg.WithFields(s.logg.WithBusinessID(ctx, businessID.String()), map[string]any{
		"package_id":       pkg.ID,
		"granted_credits":  result.GrantedCredits,
		"discount_percent": result.DiscountPercent,
		"balance":          result.Balance,
	})
	s.logg.Info(logCtx, "ledger.purchase.completed")
	return result, nil
}

func (s *service) Subscribe(ctx context.Context, businessID uuid.UUID, planID string) (*ledger.Subscription, error) {
	if _, err := s.accounts.RequireBusiness(ctx, businessID); err != nil {
		return nil, err
	}
	plan, ok := s.catalog.Plan(strings.TrimSpace(planID))
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription plan not found")
	}

	var (
		current  *ledger.Subscription
		replaced *ledger.Subscription
	)
	_, err := s.store.Transact(ctx, businessID, func(tx *ledger.Tx) error {
		var err error
		replaced, err = tx.Subscribe(ledger.Subscription{
			ID:                      uuid.New(),
			PlanID:                  plan.ID,
			BillingCycle:            plan.BillingCycle,
			PurchaseDiscountPercent: plan.PurchaseDiscountPercent,
		})
		if err != nil {
			return err
		}
		current = tx.Subscription()
		event := payloads.SubscriptionStartedEvent{
			SubscriptionID:  current.ID,
			BusinessID:      businessID,
			PlanID:          current.PlanID,
			BillingCycle:    current.BillingCycle.String(),
			DiscountPercent: current.PurchaseDiscountPercent,
			StartedAt:       current.StartedAt,
		}
		if replaced != nil {
			event.ReplacedPlanID = &replaced.PlanID
		}
		tx.Emit(enums.EventSubscriptionStarted, event)
		return nil
	})
	if err != nil {
		return nil, err
	}

	fields := map[string]any{"plan_id": current.PlanID, "action": "subscribe"}
	if replaced != nil {
		fields["replaced_plan_id"] = replaced.PlanID
	}
	s.logg.Info(s.logg.WithFields(s.logg.WithBusinessID(ctx, businessID.String()), fields), "ledger.subscription.changed")
	return current, nil
}

// Cancel removes the active subscription. Cancelling without one is a no-op.
func (s *service) Cancel(ctx context.Context, businessID uuid.UUID) error {
	if _, err := s.accounts.RequireBusiness(ctx, businessID); err != nil {
		return err
	}
	var canceled *ledger.Subscription
	_, err := s.store.Transact(ctx, businessID, func(tx *ledger.Tx) error {
		previous, ok := tx.CancelSubscription()
		if !ok {
			return nil
		}
		canceled = previous
		tx.Emit(enums.EventSubscriptionCanceled, payloads.SubscriptionCanceledEvent{
			SubscriptionID: previous.ID,
			BusinessID:     businessID,
			PlanID:         previous.PlanID,
			CanceledAt:     tx.Now(),
		})
		return nil
	})
	if err != nil {
		return err
	}
	if canceled != nil {
		logCtx := s.logg.WithFields(s.logg.WithBusinessID(ctx, businessID.String()), map[string]any{
			"plan_id": canceled.PlanID,
			"action":  "cancel",
		})
		s.logg.Info(logCtx, "ledger.subscription.changed")
	}
	return nil
}

// ListUnlockedContacts returns the business's unlock records, newest first.
func (s *service) ListUnlockedContacts(ctx context.Context, businessID uuid.UUID) ([]ledger.UnlockRecord, error) {
	state, err := s.load(ctx, businessID)
	if err != nil {
		return nil, err
	}
	records := state.UnlockedContacts()
	if s.maxUnlocksListed > 0 && len(records) > s.maxUnlocksListed {
		records = records[:s.maxUnlocksListed]
	}
	return records, nil
}

func (s *service) Balance(ctx context.Context, businessID uuid.UUID) (int64, error) {
	state, err := s.load(ctx, businessID)
	if err != nil {
		return 0, err
	}
	return state.Balance, nil
}

// Packages lists the packages the business may buy. Premium-only packages
// are offered to premium accounts and to active subscribers.
func (s *service) Packages(ctx context.Context, businessID uuid.UUID) ([]catalog.CreditPackage, error) {
	account, err := s.accounts.RequireBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}
	state, err := s.store.Load(ctx, businessID)
	if err != nil {
		return nil, err
	}
	return s.catalog.Packages(account.Premium || state.Subscription != nil), nil
}

func (s *service) Plans() []catalog.Plan {
	return s.catalog.Plans()
}

func (s *service) CurrentSubscription(ctx context.Context, businessID uuid.UUID) (*ledger.Subscription, error) {
	state, err := s.load(ctx, businessID)
	if err != nil {
		return nil, err
	}
	return state.Subscription, nil
}

func (s *service) ListEntries(ctx context.Context, businessID uuid.UUID, params pagination.Params) ([]ledger.Entry, string, error) {
	if _, err := s.accounts.RequireBusiness(ctx, businessID); err != nil {
		return nil, "", err
	}
	return s.store.ListEntries(ctx, businessID, params)
}

func (s *service) load(ctx context.Context, businessID uuid.UUID) (*ledger.State, error) {
	if _, err := s.accounts.RequireBusiness(ctx, businessID); err != nil {
		return nil, err
	}
	return s.store.Load(ctx, businessID)
}
