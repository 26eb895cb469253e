package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/config"
)

var (
	version = "dev"
	cfg     *config.Config
)

func newRootCmd() *cobra.Command {
	var cfgFile string
	v := viper.New()

	root := &cobra.Command{
		Use:   "spice",
		Short: "🌶️  Personal finance ledger",
		Long: `spice: a local-first ledger that imports bank statements, categorizes them
with keyword rules, and tracks budgets and expected income.

The spice must flow!`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(cmd, v, cfgFile)
		},
	}

	// Global flags
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/spice/config.yaml)")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "console", "log format (console, pretty, json)")
	root.PersistentFlags().String("db", "", "database path (default: $HOME/.local/share/spice/spice.db)")

	_ = v.BindPFlag("logging.level", root.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("logging.format", root.PersistentFlags().Lookup("log-format"))

	root.AddCommand(migrateCmd())
	root.AddCommand(setupCmd())
	root.AddCommand(accountsCmd())
	root.AddCommand(categoriesCmd())
	root.AddCommand(importCmd())
	root.AddCommand(keywordsCmd())
	root.AddCommand(recategorizeCmd())
	root.AddCommand(budgetsCmd())
	root.AddCommand(incomeCmd())
	root.AddCommand(goalsCmd())
	root.AddCommand(reportsCmd())
	root.AddCommand(snapshotCmd())
	root.AddCommand(versionCmd())

	return root
}

func main() {
	handler := cli.NewInterruptHandler(os.Stderr, "Stopping after the current step...")
	ctx, stop := handler.HandleInterrupts(context.Background())

	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err.Error()))
		os.Exit(1)
	}
}

func initConfig(cmd *cobra.Command, v *viper.Viper, cfgFile string) error {
	envFile, err := config.LoadDotEnv()
	if err != nil {
		return err
	}

	config.SetDefaults(v)
	config.Bind(v, cfgFile)
	if err := config.Read(v); err != nil {
		return err
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		v.Set("database.path", db)
	}

	loaded, err := config.Load(v)
	if err != nil {
		return err
	}

	if err := common.SetupLogger(cmd.ErrOrStderr(), loaded.Logging.Level, loaded.Logging.Format); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	slog.Debug("Configuration loaded",
		"config_file", v.ConfigFileUsed(),
		"env_file", envFile,
		"database", loaded.Database.Path)

	cfg = loaded
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "spice %s\n", version)
		},
	}
}
