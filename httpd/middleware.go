package httpd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sheetsdb/sheetsdb"
)

// Handler is a request handler that receives the SDK constructed for the
// authenticated identity.
type Handler func(w http.ResponseWriter, r *http.Request, sdk *sheetsdb.SDK)

// WithSDK wraps a handler with SDK construction: it authenticates the
// request, looks up the identity's meta spreadsheet and builds an SDK bound
// to the identity's client.
//
// This is the one place sheetsdb.ErrSetupRequired is translated into a
// redirect - the browser is sent to the setup page with 'next' and 'reason'
// query parameters. All other errors surface to the client as errors.
func (s *Server) WithSDK(handler Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := s.auth.Authenticate(r)
		if err != nil {
			s.log.Warn("authentication failed", zap.Error(err))
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}

		metaID, err := s.store.Get(identity.Email)
		if err != nil {
			s.log.Error("meta store error", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
		defer cancel()

		api, err := s.api(ctx, identity.Client)
		if err != nil {
			s.log.Error("API client error", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		sdk := sheetsdb.New(api, metaID, sheetsdb.WithLogger(s.log), sheetsdb.WithConfig(s.cfg))

		if metaID == "" {
			s.redirectToSetup(w, r, "no meta spreadsheet configured")
			return
		}

		if err := sdk.Verify(ctx); err != nil {
			if errors.Is(err, sheetsdb.ErrSetupRequired) || errors.Is(err, sheetsdb.ErrNotFound) {
				s.redirectToSetup(w, r, fmt.Sprintf("%v", err))
				return
			}

			s.log.Error("meta spreadsheet verification failed", zap.Error(err))
			s.redirectToSetup(w, r, fmt.Sprintf("%v", err))
			return
		}

		handler(w, r.WithContext(ctx), sdk)
	}
}

func (s *Server) redirectToSetup(w http.ResponseWriter, r *http.Request, reason string) {
	q := url.Values{}
	q.Set("next", r.URL.RequestURI())
	q.Set("reason", reason)

	http.Redirect(w, r, "/setup?"+q.Encode(), http.StatusSeeOther)
}

// logged tags each request with an ID and logs it on completion.
func (s *Server) logged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		started := time.Now()

		w.Header().Set("X-Request-Id", requestID)
		next.ServeHTTP(w, r)

		s.log.Info("request",
			zap.String("id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(started)))
	})
}
