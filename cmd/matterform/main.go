// Command matterform serves the Create Matter form, fills it in the terminal,
// or renders a snapshot of it.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-matterform/pkg/config"
	"github.com/goliatone/go-matterform/pkg/logging"
)

// Version set via ldflags during build.
var version = "dev"

type app struct {
	configFile string
	cfg        *config.Config
	logger     *zap.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:     "matterform",
		Short:   "Create Matter form with cascading lookups",
		Version: version,
		Long: `matterform drives the Create Matter form: pick an instance region, choose
a name from the region's list, review the looked-up details and confirm the
terms before the matter is saved.

Configuration is read from matterform.yml, MATTERFORM_* environment
variables and flags, in increasing order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.LoadOptions{File: a.configFile, Flags: cmd.Flags()})
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.LogLevel, cfg.LogJSON)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "config file (default ./"+config.DefaultFile+" when present)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.Bool("log-json", false, "emit JSON logs")
	flags.Duration("lookup-delay", 0, "simulated latency of the built-in lookups")
	flags.String("lookup-base-url", "", "base URL of a remote lookup service")
	flags.String("store-driver", "", "matter store driver (memory, sqlite)")
	flags.String("store-dsn", "", "matter store data source name")
	flags.String("terms-text", "", "terms and conditions text")
	flags.Bool("prefill", false, "hydrate the form from the lookup source's initial values")
	flags.String("schema-file", "", "validation schema YAML overriding the built-in rules")

	cmd.AddCommand(serveCmd(a))
	cmd.AddCommand(fillCmd(a))
	cmd.AddCommand(renderCmd(a))
	return cmd
}
