package credits

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/euroisufi/schweizer-handwerksplattform-sub000/api/responses"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/api/validators"
	creditsvc "github.com/euroisufi/schweizer-handwerksplattform-sub000/internal/credits"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/internal/ledger"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/enums"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/logger"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/pagination"
)

type balanceResponse struct {
	Balance int64 `json:"balance"`
}

type purchaseRequest struct {
	PackageID string `json:"package_id" validate:"required,catalog_id"`
}

type entryResponse struct {
	ID           uuid.UUID             `json:"id"`
	Type         enums.LedgerEntryType `json:"type"`
	Amount       int64                 `json:"amount"`
	BalanceAfter int64                 `json:"balance_after"`
	Reference    string                `json:"reference,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
}

func Balance(svc creditsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}
		businessID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		balance, err := svc.Balance(r.Context(), businessID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, balanceResponse{Balance: balance})
	}
}

// Packages lists the credit packages the caller may buy.
func Packages(svc creditsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}
		businessID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pkgs, err := svc.Packages(r.Context(), businessID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pkgs)
	}
}

func Purchase(svc creditsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}
		businessID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload purchaseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Purchase(r.Context(), businessID, payload.PackageID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// Entries pages through the caller's journal, newest first.
func Entries(svc creditsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}
		businessID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, next, err := svc.ListEntries(r.Context(), businessID, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePage(w, toEntryResponses(entries), next)
	}
}

func toEntryResponses(entries []ledger.Entry) []entryResponse {
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryResponse{
			ID:           e.ID,
			Type:         e.Type,
			Amount:       e.Amount,
			BalanceAfter: e.BalanceAfter,
			Reference:    e.Reference,
			CreatedAt:    e.CreatedAt,
		})
	}
	return out
}
