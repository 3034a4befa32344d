package commands

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pagemill/formbridge/bridge/engine"
	"github.com/pagemill/formbridge/config"
	"github.com/pagemill/formbridge/errors"
	"github.com/pagemill/formbridge/logger"
)

// NewTransferCmd runs one document-to-wizard transfer against a fixture.
func NewTransferCmd() *cobra.Command {
	var fixturePath string
	var configPath string
	var cacheDBPath string
	var watch bool

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Run a document-to-wizard transfer against a fixture",
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch && configPath == "" {
				return errors.New("--watch requires --config")
			}
			f, err := loadFixture(fixturePath)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			doc, ui, wizard := buildStores(f)
			deps := engine.Dependencies{
				DocumentStore: doc,
				UIStore:       ui,
				WizardStore:   wizard,
				WizardWriters: wizard.Writers(),
				Logger:        logger.Logger,
			}

			if cacheDBPath != "" {
				db, err := sql.Open("sqlite3", cacheDBPath)
				if err != nil {
					return errors.Wrapf(err, "failed to open cache database %s", cacheDBPath)
				}
				defer db.Close()
				deps.CacheDB = db
			}

			eng, err := engine.New(cfg, deps)
			if err != nil {
				return err
			}
			defer eng.Close()

			spinner, _ := pterm.DefaultSpinner.Start("Running transfer...")
			result := eng.ExecuteTransfer(context.Background())
			spinner.Stop()

			printOperationResult(result)
			if watch {
				return watchAndRerun(cmd.Context(), configPath, eng)
			}
			if !result.Success {
				return errors.New("transfer failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&fixturePath, "fixture", "f", "", "Fixture file (required)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file (default: standard search path)")
	cmd.Flags().StringVar(&cacheDBPath, "cache-db", "", "SQLite file for the persistent result cache")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-run the transfer whenever the config file changes")
	cmd.MarkFlagRequired("fixture")
	return cmd
}

// watchAndRerun keeps the process alive watching configPath. Each debounced
// change is applied to the engine and followed by a fresh transfer, until
// the context is done or an interrupt arrives.
func watchAndRerun(ctx context.Context, configPath string, eng *engine.Engine) error {
	watcher, err := config.NewWatcher(configPath, logger.Logger)
	if err != nil {
		return err
	}
	defer watcher.Stop()

	watcher.OnReload(func(cfg *config.Config) error {
		if err := eng.ApplyConfig(cfg); err != nil {
			return err
		}
		printOperationResult(eng.ExecuteTransfer(context.Background()))
		return nil
	})
	watcher.Start()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	pterm.Info.Printf("Watching %s for config changes (Ctrl-C to stop)\n", configPath)
	<-ctx.Done()
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.LoadFromFile(path)
		if err == nil {
			err = cfg.Validate()
		}
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	// -vvv implies per-phase debug logging regardless of the config file.
	if logger.ShouldLogTrace(logger.Verbosity) {
		cfg.Engine.DebugMode = true
	}
	return cfg, nil
}

func printOperationResult(result *engine.OperationResult) {
	pterm.Println()
	if result.Success {
		pterm.Success.Printf("Transfer complete (operation %s)\n", result.OperationID)
	} else {
		pterm.Error.Printf("Transfer failed in phase %s\n", result.Phase)
	}

	rows := pterm.TableData{
		{"Phase", string(result.Phase)},
		{"Strategy", string(result.Strategy)},
		{"Duration", pterm.Sprintf("%d ms", result.DurationMS)},
	}
	if tr := result.TransformationResult; tr != nil {
		rows = append(rows,
			[]string{"Quality score", pterm.Sprintf("%d", tr.QualityMetrics.Score)},
			[]string{"Content length", pterm.Sprintf("%d", len(tr.Content))},
			[]string{"Cache hit", pterm.Sprintf("%t", tr.Metadata.CacheHit)},
		)
	}
	pterm.DefaultTable.WithData(rows).Render()

	for _, details := range result.OperationErrors {
		pterm.Error.Printf("[%s] %s (recoverable: %t)\n",
			details.Code, details.Message, details.IsRecoverable)
	}
	if tr := result.TransformationResult; tr != nil && result.Success {
		pterm.Println()
		pterm.DefaultBox.WithTitle("Flattened content").Println(tr.Content)
	}
}
