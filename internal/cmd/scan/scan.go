// Package scan implements the scan sub-command, which lists the conversations
// discovered under the data directory without starting the server.
package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/slackarchive/archive-service/internal/config"
	registrystore "github.com/slackarchive/archive-service/internal/registry/store"
	"github.com/urfave/cli/v3"

	// Import plugins to trigger init() registration.
	_ "github.com/slackarchive/archive-service/internal/plugin/layout/flat"
	_ "github.com/slackarchive/archive-service/internal/plugin/layout/nestedid"
	_ "github.com/slackarchive/archive-service/internal/plugin/layout/selfnested"
	_ "github.com/slackarchive/archive-service/internal/plugin/store/fsexport"
)

// Command returns the scan sub-command.
func Command() *cli.Command {
	return &cli.Command{
		Name:  "scan",
		Usage: "List the conversations discovered in the data directory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "data-dir",
				Sources: cli.EnvVars("SLACK_ARCHIVE_DATA_DIR"),
				Usage:   "Root directory holding the export dumps; defaults to ./data",
			},
			&cli.StringFlag{
				Name:    "store-kind",
				Sources: cli.EnvVars("SLACK_ARCHIVE_STORE_KIND"),
				Usage:   "Backend store",
				Value:   "export",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Emit the conversation list as JSON",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.DefaultConfig()
			cfg.DataDir = cmd.String("data-dir")
			cfg.StoreType = cmd.String("store-kind")
			ctx = config.WithContext(ctx, &cfg)

			loader, err := registrystore.Select(cfg.StoreType)
			if err != nil {
				return err
			}
			store, err := loader(ctx)
			if err != nil {
				return err
			}

			log.Info("Scanning data directory", "dataDir", cfg.ResolvedDataDir())
			conversations, err := store.ListConversations(ctx)
			if err != nil {
				return err
			}

			if cmd.Bool("json") {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(conversations)
			}
			for _, conv := range conversations {
				fmt.Printf("%-12s %-8s %s\n", conv.ID, conv.Kind, conv.DisplayName)
			}
			log.Info("Scan complete", "conversations", len(conversations))
			return nil
		},
	}
}
