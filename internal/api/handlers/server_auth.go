package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kv-shepherd.io/multiauth/internal/api/middleware"
	"kv-shepherd.io/multiauth/internal/guard"
	apperrors "kv-shepherd.io/multiauth/internal/pkg/errors"
	"kv-shepherd.io/multiauth/internal/provider"
)

type resolveProviderRequest struct {
	Username string `json:"username" form:"username"`
}

// ResolveProviderResponse reports which provider the guard consults.
type ResolveProviderResponse struct {
	Guard    string         `json:"guard"`
	Provider string         `json:"provider"`
	Driver   string         `json:"driver"`
	Selected bool           `json:"selected"`
	User     *provider.User `json:"user,omitempty"`
}

// ResolveProvider handles POST /auth/provider. It runs behind the provider
// selector and reports the provider the guard resolves to, looking the user
// up in it when a username is given in the body or query.
func (s *Server) ResolveProvider(c *gin.Context) {
	ctx := c.Request.Context()

	var req resolveProviderRequest
	if c.Request.Method == http.MethodGet || c.Request.ContentLength != 0 {
		if err := c.ShouldBind(&req); err != nil {
			_ = c.Error(apperrors.Wrap(err, apperrors.CodeValidationFailed, "invalid request body", http.StatusBadRequest))
			return
		}
	}
	if req.Username == "" {
		req.Username = c.Query("username")
	}

	res, err := s.resolver.ForGuard(ctx, s.guard)
	if err != nil {
		_ = c.Error(resolveError(ctx, err, s.guard))
		return
	}

	resp := ResolveProviderResponse{
		Guard:    res.Guard,
		Provider: res.Provider.Name(),
		Driver:   res.Provider.Driver(),
		Selected: res.Selected,
	}

	if req.Username != "" {
		user, err := res.Provider.RetrieveByUsername(ctx, req.Username)
		if err != nil {
			if errors.Is(err, provider.ErrUserNotFound) {
				_ = c.Error(apperrors.ErrUserNotFoundf(resp.Provider, req.Username))
				return
			}
			_ = c.Error(apperrors.Wrap(err, "PROVIDER_LOOKUP_FAILED", "user provider lookup failed", http.StatusBadGateway))
			return
		}
		resp.User = user
	}

	middleware.LoggerFrom(ctx).Debug("guard provider resolved",
		zap.String("guard", resp.Guard),
		zap.String("provider", resp.Provider),
		zap.Bool("selected", resp.Selected),
	)
	c.JSON(http.StatusOK, resp)
}

// ListDrivers handles GET /auth/drivers.
func (s *Server) ListDrivers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": provider.ListDrivers()})
}

func resolveError(ctx context.Context, err error, guardName string) *apperrors.AppError {
	switch {
	case errors.Is(err, guard.ErrUnknownGuard):
		return apperrors.Wrap(err, apperrors.CodeUnknownGuard, "auth guard is not configured", http.StatusBadRequest).
			WithParams(map[string]interface{}{"guard": guardName})
	case errors.Is(err, provider.ErrUnknownProvider):
		selected, _ := guard.SelectedProvider(ctx, guardName)
		appErr := apperrors.ErrUnknownProviderf(selected)
		appErr.Err = err
		return appErr
	case errors.Is(err, provider.ErrUnknownDriver):
		return apperrors.ErrUnknownDriverf(err)
	default:
		return apperrors.Wrap(err, "PROVIDER_RESOLUTION_FAILED", "user provider could not be built", http.StatusInternalServerError)
	}
}
