package main

import (
	"os"

	"vendor-reconciliation-service/cmd/reconciler/cmd"
	"vendor-reconciliation-service/pkg/errors"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, date)

	if err := cmd.Execute(); err != nil {
		os.Exit(errors.GetExitCode(err))
	}
}
