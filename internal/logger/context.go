package logger

import (
	"context"

	"github.com/google/uuid"
)

type contextKey int

const (
	scopeKey contextKey = iota
	loggerKey
)

// scope identifies who a request acts for. It is copied on every change so
// a child context never alters what its parent logs.
type scope struct {
	requestID string
	userID    string
	childID   string
}

func scopeFrom(ctx context.Context) scope {
	s, _ := ctx.Value(scopeKey).(scope)
	return s
}

func withScope(ctx context.Context, update func(*scope)) context.Context {
	s := scopeFrom(ctx)
	update(&s)
	return context.WithValue(ctx, scopeKey, s)
}

// WithRequestID tags ctx with a request id, generating one when empty
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return withScope(ctx, func(s *scope) { s.requestID = requestID })
}

func RequestIDFromContext(ctx context.Context) string {
	return scopeFrom(ctx).requestID
}

// WithUserID tags ctx with the authenticated user
func WithUserID(ctx context.Context, userID string) context.Context {
	return withScope(ctx, func(s *scope) { s.userID = userID })
}

func UserIDFromContext(ctx context.Context) string {
	return scopeFrom(ctx).userID
}

// WithChildID tags ctx with the child a request operates on
func WithChildID(ctx context.Context, childID string) context.Context {
	return withScope(ctx, func(s *scope) { s.childID = childID })
}

func ChildIDFromContext(ctx context.Context) string {
	return scopeFrom(ctx).childID
}

// WithLogger stores l in ctx for FromContext
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger stored in ctx, or Default
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

func (s scope) fields() []Field {
	fields := make([]Field, 0, 3)
	if s.requestID != "" {
		fields = append(fields, String("request_id", s.requestID))
	}
	if s.userID != "" {
		fields = append(fields, String("user_id", s.userID))
	}
	if s.childID != "" {
		fields = append(fields, String("child_id", s.childID))
	}
	return fields
}

// Ctx returns the context's logger with its request scope attached
func Ctx(ctx context.Context) Logger {
	return FromContext(ctx).WithContext(ctx)
}
