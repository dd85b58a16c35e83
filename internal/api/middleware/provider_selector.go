package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"kv-shepherd.io/multiauth/internal/guard"
	apperrors "kv-shepherd.io/multiauth/internal/pkg/errors"
	"kv-shepherd.io/multiauth/internal/pkg/logger"
)

// Request fields read by the provider selector.
const (
	FieldUsername = "username"
	FieldProvider = "provider"
)

// SelectorOptions configures the provider selector.
type SelectorOptions struct {
	// Guard whose provider is selected. Empty means guard.DefaultGuard.
	Guard string
	// EnforceValidation rejects requests lacking a non-empty username or
	// provider with 422 instead of delegating.
	EnforceValidation bool
}

// DefaultSelectorOptions returns the strict selector for the api guard.
func DefaultSelectorOptions() SelectorOptions {
	return SelectorOptions{Guard: guard.DefaultGuard, EnforceValidation: true}
}

func (o SelectorOptions) guardName() string {
	if g := strings.TrimSpace(o.Guard); g != "" {
		return g
	}
	return guard.DefaultGuard
}

type providerSelection struct {
	Username string `json:"username" validate:"required"`
	Provider string `json:"provider" validate:"required"`
}

var selectionValidator = newSelectionValidator()

func newSelectionValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// SelectProvider applies the selector to r. It returns the context carrying
// the provider selection (ctx of r itself when the request names no
// provider), the buffered JSON body if one was read, and a
// *apperrors.ValidationError when strict validation fails.
func SelectProvider(r *http.Request, opts SelectorOptions) (context.Context, []byte, error) {
	fields, raw, err := readRequestFields(r, FieldUsername, FieldProvider)
	if err != nil {
		return nil, nil, err
	}
	ctx, err := applySelection(r.Context(), fields, opts)
	return ctx, raw, err
}

func applySelection(ctx context.Context, fields map[string]string, opts SelectorOptions) (context.Context, error) {
	if opts.EnforceValidation {
		if vErr := validateSelection(fields); !vErr.Empty() {
			return nil, vErr
		}
	}
	if provider, ok := fields[FieldProvider]; ok {
		ctx = guard.WithProvider(ctx, opts.guardName(), provider)
	}
	return ctx, nil
}

// validateSelection treats whitespace-only values as missing.
func validateSelection(fields map[string]string) *apperrors.ValidationError {
	sel := providerSelection{
		Username: strings.TrimSpace(fields[FieldUsername]),
		Provider: strings.TrimSpace(fields[FieldProvider]),
	}

	vErr := apperrors.NewValidationError()
	err := selectionValidator.Struct(sel)
	if err == nil {
		return vErr
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		vErr.Add("request", err.Error())
		return vErr
	}
	for _, fe := range fieldErrs {
		vErr.Add(fe.Field(), validationMessage(fe))
	}
	return vErr
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", fe.Field())
	default:
		return fmt.Sprintf("The %s field is invalid.", fe.Field())
	}
}

// validationBody is the 422 response of the strict selector.
func validationBody(vErr *apperrors.ValidationError) gin.H {
	return gin.H{
		"error":       vErr.MessageBag(),
		"status_code": http.StatusUnprocessableEntity,
	}
}

// ProviderSelector returns a Gin middleware that selects the user provider of
// a guard from the request's provider field. The selection is stored in the
// request context (see guard.WithProvider) and under guard.Key in the Gin
// context. The strict variant aborts with 422 when username or provider is
// missing.
func ProviderSelector(opts SelectorOptions) gin.HandlerFunc {
	guardName := opts.guardName()
	return func(c *gin.Context) {
		fields, err := readContextFields(c, FieldUsername, FieldProvider)
		if err != nil {
			_ = c.Error(apperrors.Wrap(err, apperrors.CodeValidationFailed, "unreadable request", http.StatusBadRequest))
			c.Abort()
			return
		}

		ctx, err := applySelection(c.Request.Context(), fields, opts)
		if err != nil {
			if vErr, ok := apperrors.IsValidationError(err); ok {
				logger.Debug("provider selection rejected",
					zap.String("guard", guardName),
					zap.String("request_id", GetRequestID(c.Request.Context())),
					zap.Error(vErr),
				)
				c.AbortWithStatusJSON(http.StatusUnprocessableEntity, validationBody(vErr))
				return
			}
			_ = c.Error(apperrors.Wrap(err, apperrors.CodeValidationFailed, "unreadable request", http.StatusBadRequest))
			c.Abort()
			return
		}

		if provider, ok := guard.SelectedProvider(ctx, guardName); ok {
			c.Set(guard.Key(guardName), provider)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

// SelectProviderHandler is the net/http form of ProviderSelector.
func SelectProviderHandler(opts SelectorOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, _, err := SelectProvider(r, opts)
			if err != nil {
				if vErr, ok := apperrors.IsValidationError(err); ok {
					writeJSON(w, http.StatusUnprocessableEntity, validationBody(vErr))
					return
				}
				writeJSON(w, http.StatusBadRequest, gin.H{
					"code":    apperrors.CodeValidationFailed,
					"message": "unreadable request",
				})
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
