package main

import (
	"os"

	"github.com/blackwell-systems/stack-deploy/internal/cli"
	"github.com/blackwell-systems/stack-deploy/internal/config"
)

var version = "dev"

func main() {
	// Initialize configuration; a broken config file is reported by
	// the commands that load it
	config.Init()

	// Execute root command
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
