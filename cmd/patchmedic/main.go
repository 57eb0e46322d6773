package main

import (
	"patchmedic/internal/cli"
	_ "patchmedic/internal/rules/checks"
)

// Set by the build via -ldflags.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cli.SetBuildInfo(version, commit, date)
	cli.Execute()
}
