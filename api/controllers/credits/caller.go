package credits

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/euroisufi/schweizer-handwerksplattform-sub000/api/middleware"
	pkgerrors "github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/errors"
)

// callerID returns the authenticated business account for r.
func callerID(r *http.Request) (uuid.UUID, error) {
	id := middleware.AccountIDFromContext(r.Context())
	if id == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return id, nil
}

func unavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "credits service unavailable")
}
