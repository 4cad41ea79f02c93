package credits

import (
	"net/http"

	"github.com/euroisufi/schweizer-handwerksplattform-sub000/api/responses"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/api/validators"
	creditsvc "github.com/euroisufi/schweizer-handwerksplattform-sub000/internal/credits"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/internal/ledger"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/logger"
)

type subscribeRequest struct {
	PlanID string `json:"plan_id" validate:"required,catalog_id"`
}

type subscriptionResponse struct {
	Subscription *ledger.Subscription `json:"subscription"`
}

func Plans(svc creditsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}
		responses.WriteSuccess(w, svc.Plans())
	}
}

// CurrentSubscription returns the active plan or a null subscription.
func CurrentSubscription(svc creditsvc.Service, logg *logger.Logger) http.HandlerFunc {
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
		sub, err := svc.CurrentSubscription(r.Context(), businessID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, subscriptionResponse{Subscription: sub})
	}
}

func Subscribe(svc creditsvc.Service, logg *logger.Logger) http.HandlerFunc {
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
		var payload subscribeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sub, err := svc.Subscribe(r.Context(), businessID, payload.PlanID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, subscriptionResponse{Subscription: sub})
	}
}

// CancelSubscription ends the current plan. Unlocked contacts stay visible.
func CancelSubscription(svc creditsvc.Service, logg *logger.Logger) http.HandlerFunc {
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
		if err := svc.Cancel(r.Context(), businessID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, subscriptionResponse{})
	}
}
