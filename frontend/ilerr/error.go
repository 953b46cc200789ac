package ilerr

import (
	"fmt"
	"go/token"
	"log/slog"
)

// Errors is an append-only list of diagnostics, shared by every pass of a
// single compilation. A nil *Errors is an empty list.
type Errors struct {
	errs []IleError
}

func (r *Errors) With(err ...IleError) *Errors {
	if r == nil {
		return &Errors{errs: err}
	}
	r.errs = append(r.errs, err...)
	return r
}

func (r *Errors) Merge(err *Errors) *Errors {
	if r == nil {
		return err
	}
	if err == nil {
		return r
	}
	if len(err.errs) == 0 {
		return r
	}
	return r.With(err.errs...)
}

// All returns errors and warnings in the order they were reported
func (r *Errors) All() []IleError {
	if r == nil {
		return nil
	}
	return r.errs
}

// Errors returns the diagnostics with error severity
func (r *Errors) Errors() []IleError {
	return r.withSeverity(SeverityError)
}

func (r *Errors) Warnings() []IleError {
	return r.withSeverity(SeverityWarning)
}

func (r *Errors) withSeverity(s Severity) []IleError {
	if r == nil {
		return nil
	}
	var out []IleError
	for _, e := range r.errs {
		if e.Severity() == s {
			out = append(out, e)
		}
	}
	return out
}

// HasError is false when there are only warnings
func (r *Errors) HasError() bool {
	if r == nil {
		return false
	}
	for _, e := range r.errs {
		if e.Severity() == SeverityError {
			return true
		}
	}
	return false
}

func (r *Errors) Len() int {
	if r == nil {
		return 0
	}
	return len(r.errs)
}

func (r *Errors) LogValue() slog.Value {
	var vals []slog.Attr
	for i, v := range r.All() {
		vals = append(vals, slog.Attr{
			Key: fmt.Sprint("e", i),
			Value: slog.GroupValue(
				slog.Attr{
					Key:   "msg",
					Value: slog.StringValue(FormatWithCode(v)),
				},
				slog.String("module", v.Module()),
			),
		})
	}
	return slog.GroupValue(vals...)
}

// FormatWithSource prefixes the formatted diagnostic with its source
// position when fSet knows about it, or with its module otherwise
func FormatWithSource(e IleError, fSet *token.FileSet) string {
	if fSet != nil && e.Pos().IsValid() {
		return fmt.Sprintf("%v: %s", fSet.Position(e.Pos()), FormatWithCode(e))
	}
	if e.Module() != "" {
		return fmt.Sprintf("%s: %s", e.Module(), FormatWithCode(e))
	}
	return FormatWithCode(e)
}
