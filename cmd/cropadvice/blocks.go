package main

import (
	"encoding/json"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-cropadvice/pkg/advice"
)

func newBlocksCmd(a *app) *cobra.Command {
	var pretty, noColor bool

	cmd := &cobra.Command{
		Use:   "blocks [file|-]",
		Short: "Print the parsed advice blocks as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			data, err := a.readInput(inputArg(args))
			if err != nil {
				return err
			}
			blocks := advice.Parse(string(data))

			if pretty {
				if noColor {
					pp.ColoringEnabled = false
				}
				_, err := pp.Fprintln(a.out, blocks)
				return err
			}

			encoder := json.NewEncoder(a.out)
			encoder.SetIndent("", "  ")
			return encoder.Encode(map[string]any{"blocks": blocks})
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "dump blocks as Go values instead of JSON")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colours in --pretty output")
	return cmd
}
