package errors

// Guard and provider error codes.
const (
	CodeUnknownGuard    = "UNKNOWN_GUARD"
	CodeUnknownProvider = "UNKNOWN_PROVIDER"
	CodeUnknownDriver   = "UNKNOWN_PROVIDER_DRIVER"
	CodeUserNotFound    = "USER_NOT_FOUND"
)

// Validation error codes.
const (
	CodeValidationFailed = "VALIDATION_FAILED"
)

// ErrUnknownProviderf creates an error for a provider missing from auth.providers.
func ErrUnknownProviderf(provider string) *AppError {
	return BadRequest(CodeUnknownProvider, "selected user provider is not configured").
		WithParams(map[string]interface{}{"provider": provider})
}

// ErrUserNotFoundf creates an error for a user missing from the selected provider.
func ErrUserNotFoundf(provider, username string) *AppError {
	return NotFound(CodeUserNotFound, "user not found in selected provider").
		WithParams(map[string]interface{}{"provider": provider, "username": username})
}

// ErrUnknownDriverf creates an error for a provider whose driver is not registered.
func ErrUnknownDriverf(err error) *AppError {
	appErr := Internal(CodeUnknownDriver, "user provider driver is not registered")
	appErr.Err = err
	return appErr
}
