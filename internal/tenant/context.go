package tenant

import (
	"context"
	"errors"
	"fmt"
)

// Key for environment scope in context
type contextKey string

const (
	environmentKey contextKey = "environment"
	requestIDKey   contextKey = "requestID"
)

// Recognized environment scopes. Every customer lookup and uniqueness
// constraint is partitioned by one of these.
const (
	EnvSandbox = "sandbox"
	EnvLive    = "live"
)

// ErrEnvironmentNotFound is returned when no environment is found in context
var ErrEnvironmentNotFound = errors.New("environment not found in context")

// ErrUnknownEnvironment is returned for environment values outside sandbox/live
var ErrUnknownEnvironment = errors.New("unknown environment")

// WithEnvironment adds an environment scope to the context
func WithEnvironment(ctx context.Context, environment string) context.Context {
	return context.WithValue(ctx, environmentKey, environment)
}

// FromContext extracts the environment scope from the context
func FromContext(ctx context.Context) (string, error) {
	environment, ok := ctx.Value(environmentKey).(string)
	if !ok || environment == "" {
		return "", ErrEnvironmentNotFound
	}
	return environment, nil
}

// Validate checks that the given environment is one of the recognized scopes
func Validate(environment string) error {
	switch environment {
	case EnvSandbox, EnvLive:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEnvironment, environment)
	}
}

// ErrNoRequestIDInContext is returned when no request ID is found in context
var ErrNoRequestIDInContext = errors.New("no request ID found in context")

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// FromRequestIDContext extracts the request ID from the context
func FromRequestIDContext(ctx context.Context) (string, error) {
	requestID, ok := ctx.Value(requestIDKey).(string)
	if !ok || requestID == "" {
		return "", ErrNoRequestIDInContext
	}
	return requestID, nil
}
