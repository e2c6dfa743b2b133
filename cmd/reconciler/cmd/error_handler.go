package cmd

import (
	"fmt"
	"os"

	"vendor-reconciliation-service/pkg/errors"
	"vendor-reconciliation-service/pkg/logger"

	"github.com/spf13/viper"
)

// CLIErrorHandler provides user-friendly error handling for CLI operations
type CLIErrorHandler struct {
	logger  logger.Logger
	verbose bool
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler() *CLIErrorHandler {
	return &CLIErrorHandler{
		logger:  logger.GetGlobalLogger().WithComponent("cli"),
		verbose: viper.GetBool("verbose"),
	}
}

// Wrap logs the error, prints any actionable detail to stderr and returns
// the error unchanged so the caller can derive an exit code from it.
func (h *CLIErrorHandler) Wrap(err error) error {
	if err == nil {
		return nil
	}

	h.logger.WithError(err).Error("Command failed")

	if reconcilerErr, ok := errors.AsReconcilerError(err); ok {
		h.printReconcilerError(reconcilerErr)
	}

	return err
}

func (h *CLIErrorHandler) printReconcilerError(err *errors.ReconcilerError) {
	if len(err.Context) > 0 {
		fmt.Fprintf(os.Stderr, "Context:\n")
		for key, value := range err.Context {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", key, value)
		}
	}
	if err.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "Suggestion: %s\n", err.Suggestion)
	}
	if h.verbose && err.Cause != nil {
		fmt.Fprintf(os.Stderr, "Cause: %v\n", err.Cause)
	}
}
