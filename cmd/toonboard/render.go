package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/marco/toonboard/internal/chart"
	"github.com/marco/toonboard/internal/interact"
	"github.com/marco/toonboard/internal/termchart"
)

var (
	renderWidth int
	renderJSON  bool
)

var renderCmd = &cobra.Command{
	Use:       "render [pie|bar|scatter|all]",
	Short:     "Print the charts in the terminal",
	Long:      "Draws one chart, or all three in dashboard order, as terminal text. With --json the plotly figure documents are printed instead.",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"pie", "bar", "scatter", "all"},
	RunE:      runRender,
}

func init() {
	renderCmd.Flags().IntVarP(&renderWidth, "width", "w", 100, "Output width in columns")
	renderCmd.Flags().BoolVar(&renderJSON, "json", false, "Print plotly figure JSON")
}

func runRender(cmd *cobra.Command, args []string) error {
	which := "all"
	if len(args) == 1 {
		which = args[0]
	}

	a, err := setup(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.close()

	dash, err := a.dashboard(cmd.Context(), a.dashboardOptions())
	if err != nil {
		return err
	}

	kinds := []chart.Kind{chart.KindPie, chart.KindBar, chart.KindScatter}
	if which != "all" {
		kinds = []chart.Kind{chart.Kind(which)}
	}
	return renderCharts(cmd.OutOrStdout(), dash, kinds, renderWidth, renderJSON)
}

func renderCharts(w io.Writer, dash *interact.Dashboard, kinds []chart.Kind, width int, asJSON bool) error {
	r := termchart.NewRenderer(width)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	for _, kind := range kinds {
		spec, ok := dash.Chart(kind)
		if !ok {
			return fmt.Errorf("unknown chart %q", kind)
		}
		if asJSON {
			if err := enc.Encode(spec.Figure()); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintln(w, r.Render(spec)); err != nil {
			return err
		}
	}
	return nil
}
