package bptree

import (
	stdlog "log"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
)

// defaultLogger backs a logr.Logger with the standard library logger, the
// way the go-logr/stdr dependency was always meant to be used. Verbosity 1
// and above is reserved for per-key insert/remove and split/merge tracing.
func defaultLogger() logr.Logger {
	std := stdlog.New(os.Stderr, "", stdlog.LstdFlags)
	return stdr.New(std)
}
