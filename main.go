package main

import (
	"context"
	"os"

	"github.com/paularlott/cli"

	"github.com/netinit-io/netinit/cmd/inspect"
	"github.com/netinit-io/netinit/cmd/provision"
	"github.com/netinit-io/netinit/cmd/serve"
	"github.com/netinit-io/netinit/internal/log"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	log.Configure("info", "console")

	rootCmd := &cli.Command{
		Name:        "netinit",
		Version:     version,
		Usage:       "Cloud metadata network provisioning agent",
		Description: "Normalizes cloud-metadata network descriptions and statically configures the host's network adapters",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:         "log-level",
				Usage:        "Log level (debug, info, warn, error)",
				DefaultValue: "info",
				EnvVars:      []string{"NETINIT_LOG_LEVEL"},
				Global:       true,
			},
			&cli.StringFlag{
				Name:         "log-format",
				Usage:        "Log format (console, json)",
				DefaultValue: "console",
				EnvVars:      []string{"NETINIT_LOG_FORMAT"},
				Global:       true,
			},
		},
		PreRun: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			log.Configure(cmd.GetString("log-level"), cmd.GetString("log-format"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			provision.Command(),
			inspect.Command(),
			serve.Command(),
		},
	}

	if err := rootCmd.Execute(context.Background()); err != nil {
		log.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}
