package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/pagemill/formbridge/config"
)

// NewConfigCmd groups the configuration subcommands.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize the formbridge configuration",
	}
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigInitCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			pterm.DefaultTable.WithData(pterm.TableData{
				{"engine.enable_validation", pterm.Sprintf("%t", cfg.Engine.EnableValidation)},
				{"engine.enable_error_recovery", pterm.Sprintf("%t", cfg.Engine.EnableErrorRecovery)},
				{"engine.debug_mode", pterm.Sprintf("%t", cfg.Engine.DebugMode)},
				{"engine.max_retry_attempts", pterm.Sprintf("%d", cfg.Engine.MaxRetryAttempts)},
				{"engine.timeout_ms", pterm.Sprintf("%d", cfg.Engine.TimeoutMS)},
				{"engine.strict_type_checking", pterm.Sprintf("%t", cfg.Engine.StrictTypeChecking)},
				{"cache.expiry_ms", pterm.Sprintf("%d", cfg.Cache.ExpiryMS)},
				{"cache.max_size", pterm.Sprintf("%d", cfg.Cache.MaxSize)},
				{"cache.sweep_interval_ms", pterm.Sprintf("%d", cfg.Cache.SweepIntervalMS)},
				{"update.settle_delay_ms", pterm.Sprintf("%d", cfg.Update.SettleDelayMS)},
			}).Render()
			return nil
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with all defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if err := config.Save(cfg, path); err != nil {
				return err
			}
			pterm.Success.Printf("Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "output", "o", config.ConfigFileName, "Output path")
	return cmd
}
