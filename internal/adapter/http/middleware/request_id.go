package middleware

import (
	"net/http"

	"github.com/Zubra14/verista-tracking/internal/domain/types"
	wrap "github.com/Zubra14/verista-tracking/pkg/logger/wrapper"
	"github.com/Zubra14/verista-tracking/pkg/uuid"
)

const requestIDHeader = "X-Request-Id"

// RequestID assigns each request an id, honoring one supplied by an
// upstream proxy, and echoes it back in the response.
func (m *Middleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := wrap.WithRequestID(r.Context(), requestID)
		ctx = types.WithRequestIDContext(ctx, requestID)

		w.Header().Set(requestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
