package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/splax/shiftwatch/internal/apperr"
	"github.com/splax/shiftwatch/internal/domain"
)

type authContextKey string

const contextKeyPrincipal authContextKey = "shiftwatch-principal"

type contextSetter interface {
	SetContext(context.Context)
}

// acceptedTokens lists the credentials every authenticated route takes.
var acceptedTokens = []domain.TokenKind{domain.TokenAccess, domain.TokenAPIKey}

// requireAuth resolves the bearer credential into a Principal before invoking the handler.
func (r *Router) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctx, ok := r.ensureAuth(w, req, bearerFromHeader)
		if !ok {
			return
		}
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

// requireStreamAuth also accepts the access_token query parameter, since browsers
// cannot set headers on websocket or EventSource requests.
func (r *Router) requireStreamAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctx, ok := r.ensureAuth(w, req, bearerFromHeaderOrQuery)
		if !ok {
			return
		}
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

// ensureAuth validates the credential and enriches the context.
func (r *Router) ensureAuth(w http.ResponseWriter, req *http.Request, extract func(*http.Request) (string, error)) (context.Context, bool) {
	token, err := extract(req)
	if err != nil {
		r.logger.Warn("authorization header invalid", "error", err, "path", req.URL.Path)
		r.writeServiceError(w, req, apperr.Unauthenticated())
		return req.Context(), false
	}
	principal, err := r.auth.Resolve(req.Context(), token, acceptedTokens...)
	if err != nil {
		if apperr.Is(err, apperr.KindUnauthenticated) {
			r.logger.Warn("token validation failed", "path", req.URL.Path)
		}
		r.writeServiceError(w, req, err)
		return req.Context(), false
	}
	ctx := context.WithValue(req.Context(), contextKeyPrincipal, principal)
	if setter, ok := w.(contextSetter); ok {
		setter.SetContext(ctx)
	}
	return ctx, true
}

// principalFromContext extracts the resolved actor.
func principalFromContext(ctx context.Context) (domain.Principal, bool) {
	principal, ok := ctx.Value(contextKeyPrincipal).(domain.Principal)
	return principal, ok
}

// principal returns the request's actor or writes a 500 when the middleware was skipped.
func (r *Router) principal(w http.ResponseWriter, req *http.Request) (domain.Principal, bool) {
	p, ok := principalFromContext(req.Context())
	if !ok {
		r.logger.Error("auth context missing", "path", req.URL.Path)
		writeError(w, http.StatusInternalServerError, "authorization context missing")
	}
	return p, ok
}

func bearerFromHeader(req *http.Request) (string, error) {
	return bearerToken(req.Header.Get("Authorization"))
}

func bearerFromHeaderOrQuery(req *http.Request) (string, error) {
	if token := strings.TrimSpace(req.URL.Query().Get("access_token")); token != "" {
		return token, nil
	}
	return bearerFromHeader(req)
}

func bearerToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header format")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("empty bearer token")
	}
	return token, nil
}
