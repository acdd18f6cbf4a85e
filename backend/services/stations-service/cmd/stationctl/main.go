package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"powerbank/backend/libs/logging"
	"powerbank/backend/services/stations-service/internal/app"
	"powerbank/backend/services/stations-service/internal/config"
	"powerbank/backend/services/stations-service/internal/models"
)

var rootCmd = &cobra.Command{
	Use:           "stationctl",
	Short:         "Operate the station monitor from the command line",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(
		newCheckCmd(),
		newRecheckCmd(),
		newBatteryCmd(),
		newSeedCmd(),
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "stationctl:", err)
		os.Exit(1)
	}
}

// withComponents loads config, builds the service graph and runs fn against it.
func withComponents(cmd *cobra.Command, fn func(ctx context.Context, c *app.Components) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger("stationctl")
	if err != nil {
		return err
	}
	defer logger.Sync()

	comps, err := app.NewComponents(cmd.Context(), cfg, logger)
	if err != nil {
		logger.Error("init failed", zap.Error(err))
		return err
	}
	defer comps.Close()
	return fn(cmd.Context(), comps)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run one monitor pass over open stations and notify if any is offline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withComponents(cmd, func(ctx context.Context, c *app.Components) error {
				result, err := c.Monitor.Run(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd, result)
			})
		},
	}
}

func newRecheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recheck",
		Short: "Check every monitored station regardless of hours, two seconds apart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withComponents(cmd, func(ctx context.Context, c *app.Components) error {
				result, err := c.Monitor.RecheckAll(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd, result)
			})
		},
	}
}

func newBatteryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "battery <stationId>",
		Short: "Fetch the battery slots of one station",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withComponents(cmd, func(ctx context.Context, c *app.Components) error {
				slots, err := c.Registry.FetchBatteries(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, map[string]interface{}{"batteries": slots})
			})
		},
	}
}

type seedFile struct {
	Stations []models.Station `yaml:"stations"`
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Create or update stations from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var file seedFile
			if err := yaml.Unmarshal(data, &file); err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}
			return withComponents(cmd, func(ctx context.Context, c *app.Components) error {
				for i := range file.Stations {
					st := &file.Stations[i]
					if st.ID == "" {
						return fmt.Errorf("station #%d has no id", i+1)
					}
					if err := c.Stations.Upsert(ctx, st); err != nil {
						return fmt.Errorf("upsert %s: %w", st.ID, err)
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d station(s)\n", len(file.Stations))
				return nil
			})
		},
	}
}
