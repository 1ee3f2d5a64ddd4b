// Package dateutil resolves the document date stamped into page headers.
package dateutil

import (
	"os"
	"strconv"
	"time"
)

// ManDateFormat is the Go layout for man page dates, e.g. "25 Aug 2026".
const ManDateFormat = "2 Jan 2006"

// Format renders a time in the man page date layout, in UTC.
func Format(t time.Time) string {
	return t.UTC().Format(ManDateFormat)
}

// Resolver picks the document date. The lookup and clock are injectable for
// testing; NewResolver wires the real environment and wall clock.
type Resolver struct {
	LookupEnv func(string) (string, bool)
	Now       func() time.Time
}

// NewResolver creates a Resolver backed by os.LookupEnv and time.Now.
func NewResolver() Resolver {
	return Resolver{
		LookupEnv: os.LookupEnv,
		Now:       time.Now,
	}
}

// Resolve returns the date string for a document. Precedence:
//
//  1. an explicit non-empty value passes through unchanged
//  2. SOURCE_DATE_EPOCH, for reproducible builds
//  3. the source file modification time, when known
//  4. the current time
func (r Resolver) Resolve(explicit string, sourceMtime time.Time) string {
	if explicit != "" {
		return explicit
	}
	if v, ok := r.LookupEnv("SOURCE_DATE_EPOCH"); ok {
		if sec, err := strconv.ParseInt(v, 10, 64); err == nil {
			return Format(time.Unix(sec, 0))
		}
	}
	if !sourceMtime.IsZero() {
		return Format(sourceMtime)
	}
	return Format(r.Now())
}
