package credits

import (
	"net/http"

	"github.com/euroisufi/schweizer-handwerksplattform-sub000/api/responses"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/api/validators"
	creditsvc "github.com/euroisufi/schweizer-handwerksplattform-sub000/internal/credits"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/logger"
)

type priceResponse struct {
	ProjectID string `json:"project_id"`
	Credits   int64  `json:"credits"`
}

// ProjectPrice previews the unlock price of a project.
func ProjectPrice(svc creditsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}
		if _, err := callerID(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		projectID, err := validators.ParseUUIDParam(r, "projectId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		price, err := svc.PreviewPrice(r.Context(), projectID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, priceResponse{ProjectID: projectID.String(), Credits: price})
	}
}

// UnlockContact spends credits on a project's contact. A first unlock answers
// 201; repeating it returns the stored record with 200 and charges nothing.
func UnlockContact(svc creditsvc.Service, logg *logger.Logger) http.HandlerFunc {
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
		projectID, err := validators.ParseUUIDParam(r, "projectId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, created, err := svc.Unlock(r.Context(), businessID, projectID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if created {
			responses.WriteSuccessStatus(w, http.StatusCreated, record)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

func UnlockedContacts(svc creditsvc.Service, logg *logger.Logger) http.HandlerFunc {
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
		records, err := svc.ListUnlockedContacts(r.Context(), businessID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, records)
	}
}
