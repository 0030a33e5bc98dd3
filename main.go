// Command wedding runs the wedding word-search backend and its maintenance tools.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nicorema/wedding/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app carries flags and loaded configuration shared by every subcommand.
type app struct {
	cfgPath string
	dbPath  string
	cfg     *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "wedding",
		Short:        "Wedding word-search game backend",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", os.Getenv("WEDDING_CONFIG"), "YAML config file")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database path (overrides config)")

	root.AddCommand(a.serveCmd(), a.puzzleCmd(), a.dbCmd(), a.remoteCmd())
	return root
}

// load reads .env, then the config file and environment, and sets up logging.
func (a *app) load(cmd *cobra.Command) error {
	_ = godotenv.Load()
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.Database.Path = a.dbPath
	}
	cfg.Logging.SetupLogging(cmd.ErrOrStderr())
	a.cfg = cfg
	return nil
}
