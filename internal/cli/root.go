package cli

import (
	"fmt"

	"github.com/existflow/sprintplan/internal/config"
	"github.com/existflow/sprintplan/internal/logger"
	"github.com/spf13/cobra"
)

var (
	logLevel   string
	logFile    string
	logConsole bool
	dbPath     string
	callerID   string

	// cfg is the configuration loaded for the running command
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "sprintplan",
	Short: "Sprintplan - sprint capacity planning",
	Long: `Sprintplan plans how employees' working days are allocated to projects
across fixed two-week sprints.

Mutating commands act as the employee set in caller_id (or --as).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config from file (or defaults if not exists)
		loaded, err := config.Load()
		if err != nil {
			logger.Warn("Failed to load config, using defaults", logger.F("error", err))
			loaded = config.DefaultConfig()
		}

		// Override with CLI flags if provided
		configChanged := false
		if cmd.Flags().Changed("log-level") {
			loaded.LogLevel = logLevel
			configChanged = true
		}
		if cmd.Flags().Changed("log-file") {
			loaded.LogFile = logFile
			configChanged = true
		}
		if cmd.Flags().Changed("log-console") {
			loaded.LogConsole = logConsole
			configChanged = true
		}

		// Save config if changed via CLI flags
		if configChanged {
			if err := loaded.Save(); err != nil {
				logger.Warn("Failed to save config", logger.F("error", err))
			}
		}

		// Per-invocation overrides are not persisted
		if cmd.Flags().Changed("db") {
			loaded.DBPath = dbPath
		}
		if cmd.Flags().Changed("as") {
			loaded.CallerID = callerID
		}
		cfg = loaded

		logConfig := logger.Config{
			Level:      logger.ParseLevel(cfg.LogLevel),
			FilePath:   cfg.LogFile,
			MaxSize:    10 * 1024 * 1024, // 10MB
			MaxAge:     7,
			MaxBackups: 5,
			Console:    cfg.LogConsole,
		}

		if err := logger.Init(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.Info("Sprintplan started", logger.F("command", cmd.Name()), logger.F("caller", cfg.CallerID))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Info("Sprintplan exiting", logger.F("command", cmd.Name()))
		logger.Close()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add logging flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Enable console logging")

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the planner database")
	rootCmd.PersistentFlags().StringVar(&callerID, "as", "", "Employee id to act as")

	// Add subcommands
	rootCmd.AddCommand(sprintsCmd)
	rootCmd.AddCommand(employeeCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(allocateCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(allocationCmd)
	rootCmd.AddCommand(capacityCmd)
	rootCmd.AddCommand(overallocatedCmd)
}
