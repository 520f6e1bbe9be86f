package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-cropadvice/internal/config"
	"github.com/goliatone/go-cropadvice/internal/logging"
	"github.com/goliatone/go-cropadvice/pkg/prompt"
)

// app carries the state shared by every subcommand. Tests swap the streams
// and the prompt driver.
type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger

	in     io.Reader
	out    io.Writer
	errOut io.Writer
	prompt prompt.Driver
}

func newApp() *app {
	return &app{
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
		prompt: prompt.NewSurveyDriver(),
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "cropadvice",
		Short: "Turn crop disease classifications into readable advice",
		Long: `cropadvice sends leaf images to a crop disease classification engine and
renders the returned advice as HTML, terminal text, markdown or JSON.

Examples:
  cropadvice serve                               # web upload form on :8383
  cropadvice analyze --crop maize --image leaf.jpg
  cropadvice render advice.md --renderer markdown
  cropadvice blocks advice.md --pretty`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ./cropadvice.yaml or ~/.config/cropadvice/cropadvice.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newServeCmd(a),
		newAnalyzeCmd(a),
		newRenderCmd(a),
		newBlocksCmd(a),
		newCropsCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	a.cfg = cfg

	if a.logger == nil {
		logger, err := logging.New(logging.Options{
			Level:       cfg.Log.Level,
			Development: cfg.Log.Development,
		})
		if err != nil {
			return err
		}
		a.logger = logger
	}
	return nil
}
