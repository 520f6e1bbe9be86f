package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-cropadvice/pkg/model"
	"github.com/goliatone/go-cropadvice/pkg/orchestrator"
	"github.com/goliatone/go-cropadvice/pkg/render"
	"github.com/goliatone/go-cropadvice/pkg/renderers/terminal"
)

type renderFlags struct {
	renderer string
	variant  string
	output   string
	title    string
	plain    bool
	width    int
}

func (f *renderFlags) register(cmd *cobra.Command, defaultRenderer string) {
	cmd.Flags().StringVarP(&f.renderer, "renderer", "r", defaultRenderer, "renderer: vanilla, terminal, markdown or blockjson")
	cmd.Flags().StringVar(&f.variant, "variant", "", "theme variant (light or dark)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "write output to a file instead of stdout")
	cmd.Flags().StringVar(&f.title, "title", "", "override the page title")
	cmd.Flags().BoolVar(&f.plain, "plain", false, "disable terminal styling")
	cmd.Flags().IntVar(&f.width, "width", 80, "terminal wrap width")
}

func (f *renderFlags) terminalOptions() []terminal.Option {
	opts := []terminal.Option{terminal.WithWidth(f.width)}
	if f.plain {
		opts = append(opts, terminal.WithPlain())
	}
	return opts
}

func newRenderCmd(a *app) *cobra.Command {
	var (
		flags      renderFlags
		asResult   bool
		crop       string
		disease    string
		confidence float64
	)

	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Render advice text or a result JSON",
		Long: `Render reads advice text (the engine's markdown-ish advice field) and
renders it. With --result the input is a full result JSON instead:

  {"crop": "Maize", "disease": "Common Rust", "confidence": 0.97, "advice": "..."}`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.readInput(inputArg(args))
			if err != nil {
				return err
			}

			result := model.ClassificationResult{
				Crop:       crop,
				Disease:    disease,
				Confidence: confidence,
				Advice:     string(data),
			}
			if asResult {
				result = model.ClassificationResult{}
				if err := json.Unmarshal(data, &result); err != nil {
					return fmt.Errorf("decode result: %w", err)
				}
			}

			page, err := newVanilla(a.cfg)
			if err != nil {
				return err
			}
			registry := newRegistry(page, flags.terminalOptions()...)
			if err := requireRenderer(registry, flags.renderer); err != nil {
				return err
			}

			orch := a.newOrchestrator(pipelineOptions{registry: registry})
			outcome, err := orch.Render(cmd.Context(), orchestrator.RenderRequest{
				Result:        result,
				Renderer:      flags.renderer,
				RenderOptions: render.RenderOptions{Title: flags.title},
				ThemeVariant:  flags.variant,
			})
			if err != nil {
				return err
			}
			return a.writeOutput(flags.output, outcome.Output)
		},
	}

	flags.register(cmd, "terminal")
	cmd.Flags().BoolVar(&asResult, "result", false, "treat input as a result JSON document")
	cmd.Flags().StringVar(&crop, "crop", "", "crop shown in the header for plain advice input")
	cmd.Flags().StringVar(&disease, "disease", "", "disease shown in the header for plain advice input")
	cmd.Flags().Float64Var(&confidence, "confidence", 0, "confidence (0..1) shown in the header for plain advice input")
	return cmd
}
