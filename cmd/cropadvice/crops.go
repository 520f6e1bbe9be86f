package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-cropadvice/pkg/model"
)

func newCropsCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "crops",
		Short: "List supported crops and their disease labels",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			crops := model.DefaultCatalogue().Crops()
			if asJSON {
				encoder := json.NewEncoder(a.out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(map[string]any{"crops": crops})
			}
			for _, crop := range crops {
				if _, err := fmt.Fprintf(a.out, "%-6s %s\n", crop.Name, strings.Join(crop.Labels, ", ")); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
