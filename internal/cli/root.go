package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/samruddhi/pipecut/internal/config"
	"github.com/samruddhi/pipecut/internal/db"
	"github.com/samruddhi/pipecut/internal/logger"
	"github.com/samruddhi/pipecut/internal/services"
	"github.com/samruddhi/pipecut/internal/store"
)

var (
	cfgFile  string
	cfg      *config.Config
	selector *db.Selector
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "samruddhi",
	Short: "Steel pipe cutting planner",
	Long: `Samruddhi plans how to cut stainless steel pipes into required pieces,
using stored leftover pieces first and keeping the leftover inventory in a
local SQLite file or a hosted libSQL database.

The hosted database is used when both TURSO_DATABASE_URL and TURSO_AUTH_TOKEN
are set; otherwise the local file is used.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// init writes the config file, it must not require one
		if cmd.Name() == "init" {
			return nil
		}

		if cfgFile == "" {
			cfgFile = config.GetConfigPath()
		}

		var err error
		if config.Exists(cfgFile) {
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
		} else {
			cfg = config.DefaultConfig()
		}

		if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		if err := logger.Configure(logger.Options{
			Level:      logger.ParseLogLevel(cfg.Logging.Level),
			Format:     cfg.Logging.Format,
			Output:     cmd.ErrOrStderr(),
			File:       cfg.Logging.File,
			MaxSize:    cfg.Logging.MaxSize,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAge:     cfg.Logging.MaxAge,
		}); err != nil {
			return fmt.Errorf("failed to configure logger: %w", err)
		}

		selector = db.FromConfig(cfg.Database)
		logger.Debug("Database target: %s", selector.Target())
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()
		if selector != nil {
			return selector.Close()
		}
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $SAMRUDDHI_CONFIG_PATH or ./samruddhi.yaml)")

	// Disable completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Add subcommands
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(backendCmd)
	rootCmd.AddCommand(leftoversCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(statsCmd)
}

// openDatabase connects through the selector and brings the schema up to date
func openDatabase(ctx context.Context) (db.Database, error) {
	database, err := selector.Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(ctx, database); err != nil {
		return nil, err
	}
	return database, nil
}

// newPlannerService wires the planner against the selected database
func newPlannerService(ctx context.Context) (*services.PlannerService, error) {
	database, err := openDatabase(ctx)
	if err != nil {
		return nil, err
	}
	return services.NewPlannerService(store.NewLeftoverStore(database)), nil
}
