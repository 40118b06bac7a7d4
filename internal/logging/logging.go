// Package logging configures the logrus logger shared by the server and
// records booking failures.
package logging

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type ctxKey struct{}

// New returns a logger writing to stdout.  Production uses the JSON
// formatter; other environments use text.  An unknown level selects info.
func New(level string, json bool) *logrus.Logger {
	return NewWithOutput(os.Stdout, level, json)
}

func NewWithOutput(w io.Writer, level string, json bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	if json {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

// WithRequestID stores the request id on ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID returns the request id stored on ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Auditor writes operation failures to the logger.  Its Failure method
// satisfies booking.Auditor.
type Auditor struct {
	log *logrus.Logger
}

func NewAuditor(l *logrus.Logger) *Auditor {
	if l == nil {
		panic("nil logger passed to NewAuditor")
	}
	return &Auditor{log: l}
}

// Failure logs err at error level with the operation, the request id and
// the given fields.
func (a *Auditor) Failure(ctx context.Context, op string, err error, fields map[string]any) {
	a.entry(ctx, op, err, fields).Error("operation failed")
}

// Warning logs a failure the operation recovered from.
func (a *Auditor) Warning(ctx context.Context, op string, err error, fields map[string]any) {
	a.entry(ctx, op, err, fields).Warn("operation degraded")
}

func (a *Auditor) entry(ctx context.Context, op string, err error, fields map[string]any) *logrus.Entry {
	entry := a.log.WithFields(logrus.Fields(fields)).WithField("op", op).WithError(err)
	if id := RequestID(ctx); id != "" {
		entry = entry.WithField("request_id", id)
	}
	return entry
}
