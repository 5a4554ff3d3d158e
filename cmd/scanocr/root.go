package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joseph-ayodele/scanocr/internal/app"
	"github.com/joseph-ayodele/scanocr/internal/common"
)

var (
	// Version information (set via ldflags during build)
	Version = "dev"
	Commit  = "unknown"

	cfgFile string
)

// errRunFailed is returned when at least one document or page failed. The
// console summary already says what happened, so main only sets the exit code.
var errRunFailed = errors.New("run finished with failures")

var rootCmd = &cobra.Command{
	Use:   "scanocr",
	Short: "OCR scanned PDFs into one text file per page",
	Long: `scanocr rasterizes every page of each PDF in a directory, optionally
enhances the page image, runs Tesseract on it and writes <name>-Page<n>.txt
next to the PDF (or into --output). Each page is labeled with a quality tier
derived from the mean word confidence.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is ./scanocr.{json,yaml} or ./config/scanocr.{json,yaml})")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: json or text")

	rootCmd.AddCommand(runCmd, fileCmd, watchCmd, versionCmd)
}

// bindings maps config keys to flag names on cmd and its parents.
var bindings = map[string]string{
	"log.level":  "log-level",
	"log.format": "log-format",
}

// loadConfig merges defaults, config file, environment and any flag the user
// actually set, in that order of precedence.
// Overrides are applied last and beat everything else.
func loadConfig(cmd *cobra.Command, extra map[string]string, overrides map[string]any) (*common.Config, *slog.Logger, error) {
	v, err := common.NewViper(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	for key, val := range overrides {
		v.Set(key, val)
	}
	if err := bindFlags(v, cmd, bindings); err != nil {
		return nil, nil, err
	}
	if err := bindFlags(v, cmd, extra); err != nil {
		return nil, nil, err
	}
	cfg, err := common.DecodeConfig(v)
	if err != nil {
		return nil, nil, err
	}
	logger := common.NewLogger(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command, m map[string]string) error {
	for key, name := range m {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// execute starts metrics, runs fn and maps a run with failures to errRunFailed.
func execute(ctx context.Context, a *app.App, fn func(context.Context) (app.Run, error)) error {
	if _, err := a.StartMetrics(ctx); err != nil {
		return err
	}
	run, err := fn(ctx)
	if err != nil {
		return err
	}
	if run.Summary.Failed() {
		return errRunFailed
	}
	return nil
}
