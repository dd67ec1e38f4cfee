package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jwtdemo/auth-system/internal/api/metrics"
	"github.com/jwtdemo/auth-system/internal/core/domain"
	"github.com/jwtdemo/auth-system/internal/core/ports"
)

const claimsKey = "auth.claims"

const (
	MsgTokenRequired = "Access token required"
	MsgTokenInvalid  = "Invalid or expired token"
)

// Auth is the session guard. It extracts the bearer token from the
// Authorization header, verifies it with codec and attaches the decoded
// claims to the context before calling next. Requests without a token or with
// a token that fails verification are rejected with 401 and never reach next.
func Auth(codec ports.TokenCodec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			scheme, tok := splitAuthorization(c.Request().Header.Get(echo.HeaderAuthorization))
			if tok == "" {
				metrics.GuardDecisionsTotal.WithLabelValues("missing_token").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, MsgTokenRequired)
			}
			if !strings.EqualFold(scheme, "bearer") {
				metrics.GuardDecisionsTotal.WithLabelValues("invalid_token").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, MsgTokenInvalid)
			}

			claims, err := codec.Verify(tok)
			if err != nil {
				metrics.GuardDecisionsTotal.WithLabelValues("invalid_token").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, MsgTokenInvalid)
			}

			metrics.GuardDecisionsTotal.WithLabelValues("authenticated").Inc()
			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// ClaimsFrom returns the claims attached by Auth. ok is false when the guard
// did not run for this request.
func ClaimsFrom(c echo.Context) (domain.Claims, bool) {
	claims, ok := c.Get(claimsKey).(domain.Claims)
	return claims, ok
}

func splitAuthorization(header string) (scheme, token string) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 {
		return parts[0], ""
	}
	return parts[0], strings.TrimSpace(parts[1])
}
