package main

import (
	"fmt"
	"os"

	"github.com/mrlokans/bookfetch/internal/cli"
	"github.com/mrlokans/bookfetch/internal/config"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	config.LoadDotEnv()
	cfg := config.NewConfig()

	root := cli.NewRootCommand(cli.NewApp(cfg, Version), fmt.Sprintf("%s (%s)", Version, Commit))
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
