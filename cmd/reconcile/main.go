// Command reconcile reports the changes between two documents through the
// handlers of a configuration file, and validates documents against a JSON
// Schema.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/goliatone/go-reconcile/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		l, logErr := config.NewLogger(config.LogConfig{Level: "debug", Format: "console"})
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
