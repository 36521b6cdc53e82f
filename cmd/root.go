package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abhisek/fluentz/internal/config"
	"github.com/abhisek/fluentz/internal/logging"
	"github.com/abhisek/fluentz/internal/store"
)

var (
	cfg    *config.Config
	logger *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fluentz",
	Short: "Adaptive language lesson generator",
	Long: "fluentz generates language lessons with a model provider and adapts their " +
		"difficulty to the learner's recorded quiz results.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default ./fluentz.yaml)")
	rootCmd.PersistentFlags().String("env-file", "", "Path to dotenv file (default .env)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides store.path)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(sequenceCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(nextIndexCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads configuration and builds the logger shared by every
// command. --db takes priority over the configured sqlite path.
func loadConfig(cmd *cobra.Command) error {
	configFile, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")

	c, err := config.Load(config.Options{ConfigFile: configFile, EnvFile: envFile})
	if err != nil {
		return err
	}

	if p, _ := cmd.Flags().GetString("db"); p != "" {
		if err := store.EnsureDir(p); err != nil {
			return fmt.Errorf("create database directory: %w", err)
		}
		c.Store.Driver = "sqlite"
		c.Store.DSN = ""
		c.Store.Path = p
	}

	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	l, err := logging.New(c.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	cfg, logger = c, l
	return nil
}
