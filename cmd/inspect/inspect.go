package inspect

import (
	"context"
	"fmt"
	"strings"

	"github.com/paularlott/cli"

	"github.com/netinit-io/netinit/internal/agent"
	"github.com/netinit-io/netinit/internal/config"
)

// Command digests the metadata and prints the normalized model without
// touching the host.
func Command() *cli.Command {
	return &cli.Command{
		Name:        "inspect",
		Usage:       "Show the normalized network model",
		Description: "Fetch and digest network metadata, then print the validated links and networks without configuring anything",
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
			&cli.IntFlag{
				Name:         "history",
				Usage:        "Also show the last N provisioning runs",
				DefaultValue: 0,
			},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.Load(&config.Config{
				MetadataURL:  cmd.GetString("metadata-url"),
				MetadataFile: cmd.GetString("metadata-file"),
			})

			a, err := agent.New(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			details, err := a.NetworkDetails(ctx)
			if err != nil {
				return err
			}
			if details == nil {
				fmt.Println("No network metadata available.")
				return nil
			}

			fmt.Println("=== Links ===")
			for _, linkID := range details.Links() {
				link, _ := details.Link(linkID)
				fmt.Printf("%s  name=%s type=%s mac=%s",
					link.ID, link.Name, link.Type, link.MACAddress)
				if link.MTU > 0 {
					fmt.Printf(" mtu=%d", link.MTU)
				}
				fmt.Println()

				for _, networkID := range details.Networks(linkID) {
					network, ok := details.Network(networkID)
					if !ok {
						continue
					}
					fmt.Printf("  - %s  ipv%d %s/%s gateway=%s",
						network.ID, network.Version, network.IPAddress,
						network.Netmask, network.Gateway)
					if len(network.DNSNameservers) > 0 {
						fmt.Printf(" dns=%s", strings.Join(network.DNSNameservers, ","))
					}
					fmt.Println()
				}
			}
			if len(details.Links()) == 0 {
				fmt.Println("(no links survived digestion)")
			}

			if limit := cmd.GetInt("history"); limit > 0 {
				runs, err := a.Store().ListRuns(limit)
				if err != nil {
					return err
				}
				fmt.Println()
				fmt.Println("=== Recent runs ===")
				for _, run := range runs {
					fmt.Printf("%s  %s  %s  links=%d/%d reboot=%v\n",
						run.StartedAt.Format("2006-01-02 15:04:05"), run.ID,
						run.Status, run.LinksConfigured, run.LinksTotal,
						run.RebootRequired)
				}
			}
			return nil
		},
	}
}
