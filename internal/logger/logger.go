package logger

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"agrirent-backend/internal/domain"
)

var current atomic.Pointer[slog.Logger]

// ParseLevel maps a config level name to a slog level. Unknown names fall back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Initialize installs a stdout logger with the given level and format ("json" or "text").
func Initialize(level, format string) {
	Setup(os.Stdout, level, format)
}

// Setup installs a logger writing to w and makes it the slog default.
func Setup(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	l := slog.New(h).With("app", "agrirent")
	current.Store(l)
	slog.SetDefault(l)
	return l
}

func get() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	return Setup(os.Stdout, "info", "text")
}

func Debug(msg string, args ...any) { get().Debug(msg, args...) }
func Info(msg string, args ...any)  { get().Info(msg, args...) }
func Warn(msg string, args ...any)  { get().Warn(msg, args...) }
func Error(msg string, args ...any) { get().Error(msg, args...) }

// EnterMethod traces entry into a service or repository method at debug level.
func EnterMethod(method string, args ...any) {
	get().Debug("enter", prepend(args, "method", method)...)
}

// ExitMethod traces a successful return at debug level.
func ExitMethod(method string, args ...any) {
	get().Debug("exit", prepend(args, "method", method)...)
}

// ExitMethodWithError records a failed return. Expected domain failures
// (conflicts, bad input) go out as warnings; everything else is an error.
func ExitMethodWithError(method string, err error, args ...any) {
	all := prepend(args, "method", method, "error", err)
	if expected(err) {
		get().Warn("exit with error", all...)
		return
	}
	get().Error("exit with error", all...)
}

// DatabaseCall traces a statement against the given table.
func DatabaseCall(op, table string, args ...any) {
	get().Debug("db", prepend(args, "op", op, "table", table)...)
}

// DatabaseResult traces the outcome of a write; a failure is logged as an error.
func DatabaseResult(op string, rowsAffected int64, err error, args ...any) {
	all := prepend(args, "op", op, "rows_affected", rowsAffected)
	if err != nil {
		get().Error("db failed", append(all, "error", err)...)
		return
	}
	get().Debug("db done", all...)
}

// ExternalServiceCall traces an outbound call to a notification channel or other service.
func ExternalServiceCall(service, op string, args ...any) {
	get().Debug("external call", prepend(args, "service", service, "op", op)...)
}

// ExternalServiceResult traces the outcome of an outbound call. Failures are warnings:
// callers of external services here never fail the request because of them.
func ExternalServiceResult(service, op string, err error, args ...any) {
	all := prepend(args, "service", service, "op", op)
	if err != nil {
		get().Warn("external call failed", append(all, "error", err)...)
		return
	}
	get().Debug("external call done", all...)
}

// Transition is the audit record for a rental status change. An empty from marks creation.
func Transition(rentalID int32, from, to string, actorID int32, args ...any) {
	if from == "" {
		from = "none"
	}
	get().Info("rental status changed", prepend(args, "audit", "transition",
		"rental_id", rentalID, "from", from, "to", to, "actor_id", actorID)...)
}

// CredentialCheck is the audit record for a pickup or return scan.
func CredentialCheck(rentalID int32, purpose, result string, actorID int32) {
	l := get()
	attrs := []any{"audit", "credential", "rental_id", rentalID, "purpose", purpose, "result", result, "actor_id", actorID}
	if result == "ok" {
		l.Info("credential accepted", attrs...)
		return
	}
	l.Warn("credential rejected", attrs...)
}

func prepend(args []any, head ...any) []any {
	return append(head, args...)
}

// expected reports whether err is a caller-facing domain failure.
func expected(err error) bool {
	for _, target := range []error{
		domain.ErrDateRangeInvalid,
		domain.ErrDateUnavailable,
		domain.ErrInvalidStateTransition,
		domain.ErrCredentialInvalid,
		domain.ErrCredentialAlreadyConsumed,
		domain.ErrNotFound,
		domain.ErrForbidden,
		domain.ErrValidation,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
