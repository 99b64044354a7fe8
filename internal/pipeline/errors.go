package pipeline

import "fmt"

// ConfigError indicates a required credential or endpoint is not configured.
type ConfigError struct {
	Missing []string
	Message string
}

func (e *ConfigError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("configuration error: %s (missing %v)", e.Message, e.Missing)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// UpstreamError indicates a provider the request cannot do without failed.
type UpstreamError struct {
	Service string
	Cause   error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s unavailable: %v", e.Service, e.Cause)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// ValidationError indicates a bad request parameter.
type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// NotFoundError indicates the reference city could not be located.
type NotFoundError struct {
	What  string
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %q", e.What, e.Query)
}
