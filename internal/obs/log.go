// Package obs wraps logrus the way the teacher's cmd/root.go configures
// it: parse a string level, fall back to info on error, and expose a
// per-component logger via WithField.
package obs

import "github.com/sirupsen/logrus"

// NewLogger returns a logrus entry scoped to component, with its level set
// from the given level string (defaulting to Info on an unrecognized
// value, matching cmd/root.go's ParseLevel/SetLevel pattern but scoped
// per-logger instead of mutating global state, since multiple solver runs
// may execute concurrently under the portfolio manager).
func NewLogger(component, level string) *logrus.Entry {
	l := logrus.New()
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)
	return l.WithField("component", component)
}
