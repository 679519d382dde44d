package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/paularlott/cli"

	"github.com/netinit-io/netinit/internal/agent"
	"github.com/netinit-io/netinit/internal/config"
	"github.com/netinit-io/netinit/internal/log"
	"github.com/netinit-io/netinit/internal/worker"
)

// Command runs the agent as a daemon, re-provisioning on a schedule so
// metadata changes are picked up after boot.
func Command() *cli.Command {
	return &cli.Command{
		Name:        "serve",
		Usage:       "Run the agent in the background",
		Description: "Provision once at startup, then re-run on a schedule until stopped",
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
			&cli.StringFlag{
				Name:    "schedule",
				Usage:   "Re-provisioning schedule (cron expression or descriptor like @every 15m)",
				EnvVars: []string{"NETINIT_SCHEDULE"},
			},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.Load(&config.Config{
				MetadataURL:  cmd.GetString("metadata-url"),
				MetadataFile: cmd.GetString("metadata-file"),
				DataDir:      cmd.GetString("data-dir"),
				Schedule:     cmd.GetString("schedule"),
			})
			log.Info("starting netinit agent", "config", cfg.String(), "schedule", cfg.Schedule)

			a, err := agent.New(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.ProvisionOnce(ctx); err != nil {
				log.Error("initial provisioning pass failed", "error", err)
			}

			scheduler := worker.NewScheduler()
			err = scheduler.Schedule(cfg.Schedule, func() {
				if _, err := a.ProvisionOnce(context.Background()); err != nil {
					log.Error("scheduled provisioning pass failed", "error", err)
				}
			})
			if err != nil {
				return err
			}
			scheduler.Start()
			defer scheduler.Stop()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			select {
			case sig := <-stop:
				log.Info("shutting down", "signal", sig.String())
			case <-ctx.Done():
			}
			return nil
		},
	}
}
