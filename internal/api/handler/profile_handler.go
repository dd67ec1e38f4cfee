package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jwtdemo/auth-system/internal/api/middleware"
	"github.com/jwtdemo/auth-system/internal/core/domain"
	"github.com/jwtdemo/auth-system/internal/core/ports"
)

// ProfileHandler serves the protected profile resource. It must be mounted
// behind middleware.Auth.
type ProfileHandler struct {
	authService ports.AuthService
	now         func() time.Time
}

func NewProfileHandler(authService ports.AuthService, now func() time.Time) *ProfileHandler {
	if now == nil {
		now = time.Now
	}
	return &ProfileHandler{authService: authService, now: now}
}

type profileResponse struct {
	Message   string             `json:"message"`
	User      domain.UserSummary `json:"user"`
	Timestamp string             `json:"timestamp"`
}

// Get returns the account behind the presented token.
//
// @Summary      Get the authenticated user's profile
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/profile [get]
func (h *ProfileHandler) Get(c echo.Context) error {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, middleware.MsgTokenRequired)
	}

	user, err := h.authService.Profile(c.Request().Context(), claims)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, profileResponse{
		Message:   "Protected data retrieved successfully",
		User:      user,
		Timestamp: h.now().UTC().Format(time.RFC3339Nano),
	})
}
