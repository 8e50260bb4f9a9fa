package httpapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/romariotrain/vidtube/internal/models"
)

// UserIDHeader carries the caller identity set by the authenticating gateway
// in front of this service.
const UserIDHeader = "X-User-ID"

type callerKey struct{}

// RequireUser rejects requests without a valid caller identity and stores the
// identity in the request context.
func RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := models.ParseID(r.Header.Get(UserIDHeader))
		if !ok {
			writeError(w, r, models.Unauthorized("Unauthorized request"))
			return
		}
		next(w, r.WithContext(WithCaller(r.Context(), id)))
	}
}

func WithCaller(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, callerKey{}, id)
}

// CallerFrom returns the caller identity, or uuid.Nil when there is none.
func CallerFrom(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(callerKey{}).(uuid.UUID)
	return id
}
