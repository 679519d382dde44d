package provision

import (
	"context"
	"fmt"

	"github.com/paularlott/cli"

	"github.com/netinit-io/netinit/internal/agent"
	"github.com/netinit-io/netinit/internal/config"
)

// Command runs one provisioning pass end to end.
func Command() *cli.Command {
	return &cli.Command{
		Name:        "provision",
		Usage:       "Run one provisioning pass",
		Description: "Fetch network metadata, normalize it and statically configure the host adapters",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "metadata-url",
				Usage:   "Base URL of the HTTP metadata service",
				EnvVars: []string{"NETINIT_METADATA_URL"},
			},
			&cli.StringFlag{
				Name:    "metadata-file",
				Usage:   "Path to a local network_data.json (overrides the HTTP service)",
				EnvVars: []string{"NETINIT_METADATA_FILE"},
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "Directory for the run-history database",
				EnvVars: []string{"NETINIT_DATA_DIR"},
			},
			&cli.BoolFlag{
				Name:         "dry-run",
				Usage:        "Log the configuration instead of applying it",
				DefaultValue: false,
			},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			opts := &config.Config{
				MetadataURL:  cmd.GetString("metadata-url"),
				MetadataFile: cmd.GetString("metadata-file"),
				DataDir:      cmd.GetString("data-dir"),
			}
			if cmd.GetBool("dry-run") {
				opts.AdapterBackend = "noop"
			}
			cfg := config.Load(opts)

			a, err := agent.New(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			run, err := a.ProvisionOnce(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("Provisioning %s: %d/%d links configured\n",
				run.Status, run.LinksConfigured, run.LinksTotal)
			if run.RebootRequired {
				fmt.Println("A reboot is required for the configuration to take effect.")
			}
			return nil
		},
	}
}
