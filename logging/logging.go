// Package logging wraps go-kit/log the way the teacher's SCLogInit
// (spacecraft.go) does: a logfmt logger over a synchronized stdout writer,
// with a component name attached via With so every line self-identifies.
package logging

import (
	"os"

	kitlog "github.com/go-kit/kit/log"
)

// New returns a logfmt logger tagged with component, e.g. "metric",
// "dispatcher", "sceneryio".
func New(component string) kitlog.Logger {
	l := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	return kitlog.With(l, "ts", kitlog.DefaultTimestampUTC, "component", component)
}
