package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-cropadvice/pkg/classifier"
	"github.com/goliatone/go-cropadvice/pkg/model"
	"github.com/goliatone/go-cropadvice/pkg/orchestrator"
	"github.com/goliatone/go-cropadvice/pkg/prompt"
	"github.com/goliatone/go-cropadvice/pkg/render"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		flags   renderFlags
		crop    string
		image   string
		offline bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Classify a leaf image and render the advice",
		Long: `Analyze sends an image to the classification engine and renders the
report. Missing --crop or --image values are asked for interactively.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			catalogue := model.DefaultCatalogue()

			var err error
			if crop, err = a.askCrop(ctx, catalogue, crop); err != nil {
				return err
			}
			if image, err = a.askImage(ctx, image); err != nil {
				return err
			}
			if err := a.confirmOverwrite(ctx, flags.output); err != nil {
				return err
			}

			file, err := os.Open(image)
			if err != nil {
				return fmt.Errorf("open image: %w", err)
			}
			defer file.Close()

			info, data, err := classifier.ValidateImage(file, a.cfg.Server.MaxUploadBytes)
			if err != nil {
				return err
			}
			a.logger.Debug("image accepted",
				zap.String("format", info.Format),
				zap.Int("width", info.Width),
				zap.Int("height", info.Height),
				zap.String("size", info.HumanSize()),
			)

			cls, err := newClassifier(ctx, a.cfg, offline)
			if err != nil {
				return err
			}
			page, err := newVanilla(a.cfg)
			if err != nil {
				return err
			}
			registry := newRegistry(page, flags.terminalOptions()...)
			if err := requireRenderer(registry, flags.renderer); err != nil {
				return err
			}
			store, err := openHistory(ctx, a.cfg)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			orch := a.newOrchestrator(pipelineOptions{
				classifier: cls,
				registry:   registry,
				history:    store,
				catalogue:  catalogue,
			})
			outcome, err := orch.Analyze(ctx, orchestrator.AnalyzeRequest{
				Crop:        crop,
				Filename:    filepath.Base(image),
				ContentType: info.ContentType,
				Image:       bytes.NewReader(data),
				Renderer:    flags.renderer,
				RenderOptions: render.RenderOptions{
					Title:    flags.title,
					ImageURL: dataURL(info.ContentType, data),
				},
				ThemeVariant: flags.variant,
			})
			if err != nil {
				return err
			}
			return a.writeOutput(flags.output, outcome.Output)
		},
	}

	flags.register(cmd, "terminal")
	cmd.Flags().StringVar(&crop, "crop", "", "crop shown in the image (Wheat, Rice or Maize)")
	cmd.Flags().StringVar(&image, "image", "", "path to a JPEG, PNG, GIF or WebP leaf image")
	cmd.Flags().BoolVar(&offline, "offline", false, "answer from built-in fixtures instead of the engine")
	return cmd
}

// askCrop returns the canonical crop name, prompting when value is empty.
func (a *app) askCrop(ctx context.Context, catalogue *model.Catalogue, value string) (string, error) {
	if strings.TrimSpace(value) != "" {
		crop, ok := catalogue.Lookup(value)
		if !ok {
			return "", fmt.Errorf("%w: %q (supported: %s)", model.ErrUnknownCrop, value, strings.Join(catalogue.Names(), ", "))
		}
		return crop.Name, nil
	}

	names := catalogue.Names()
	index, err := a.prompt.Select(ctx, prompt.SelectConfig{
		Message: "Which crop is in the image?",
		Options: names,
	})
	if err != nil {
		return "", promptErr(err)
	}
	if index < 0 || index >= len(names) {
		return "", fmt.Errorf("crop selection %d out of range", index)
	}
	return names[index], nil
}

// askImage returns an existing file path, prompting when value is empty.
func (a *app) askImage(ctx context.Context, value string) (string, error) {
	if strings.TrimSpace(value) != "" {
		return value, checkFile(value)
	}
	path, err := a.prompt.Input(ctx, prompt.InputConfig{
		Message:   "Path to the leaf image:",
		Help:      "JPEG, PNG, GIF or WebP",
		Validator: checkFile,
	})
	if err != nil {
		return "", promptErr(err)
	}
	return strings.TrimSpace(path), nil
}

// confirmOverwrite asks before replacing an existing output file.
func (a *app) confirmOverwrite(ctx context.Context, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	ok, err := a.prompt.Confirm(ctx, prompt.ConfirmConfig{
		Message: fmt.Sprintf("Overwrite %s?", path),
	})
	if err != nil {
		return promptErr(err)
	}
	if !ok {
		return fmt.Errorf("not overwriting %s", path)
	}
	return nil
}

func checkFile(path string) error {
	info, err := os.Stat(strings.TrimSpace(path))
	if err != nil {
		return fmt.Errorf("image: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("image: %s is a directory", path)
	}
	return nil
}

func promptErr(err error) error {
	if errors.Is(err, prompt.ErrAborted) {
		return errors.New("aborted")
	}
	return err
}
