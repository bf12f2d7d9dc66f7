package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kass/go-land-area/pkg/area"
	"github.com/kass/go-land-area/pkg/models"
	"github.com/kass/go-land-area/pkg/track"
)

var emitGeoJSON bool

var areaCmd = &cobra.Command{
	Use:   "area [file]",
	Short: "Estimate the area enclosed by a recorded track",
	Long: `Read a track (YAML/JSON fix list or GeoJSON) and print the enclosed area.
The file defaults to stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runArea,
}

func init() {
	areaCmd.Flags().BoolVar(&emitGeoJSON, "geojson", false, "Print the plot as a GeoJSON feature")
}

func runArea(cmd *cobra.Command, args []string) error {
	path := "-"
	if len(args) == 1 {
		path = args[0]
	}

	fixes, err := track.Load(path)
	if err != nil {
		return err
	}

	result := area.Estimate(fixes)
	logger.Debug("area estimated",
		zap.String("track", path),
		zap.Int("fixes", len(fixes)),
		zap.Float64("area_sqm", result.SquareMeters))

	out := cmd.OutOrStdout()
	if emitGeoJSON {
		data, err := track.EncodeFeature(fixes, result)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	printResult(out, fixes, result)
	return nil
}

func printResult(out io.Writer, fixes []models.GeoPoint, result area.Result) {
	if !isTerminal(out) {
		fmt.Fprintln(out, result.String())
		return
	}

	var b strings.Builder
	b.WriteString(resultStyle.Render(result.String()))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s %s\n", dimStyle.Render("Fixes:"), statStyle.Render(fmt.Sprintf("%d", len(fixes))))
	fmt.Fprintf(&b, "%s %s\n", dimStyle.Render("Square meters:"), statStyle.Render(fmt.Sprintf("%.2f", result.SquareMeters)))
	fmt.Fprintf(&b, "%s %s", dimStyle.Render("Perimeter:"), statStyle.Render(fmt.Sprintf("%.1f m", result.Perimeter)))
	if len(fixes) < 3 {
		b.WriteString("\n\n")
		b.WriteString(infoStyle.Render("At least 3 fixes are needed to enclose an area"))
	}

	fmt.Fprintln(out, titleStyle.Render("Land Area"))
	fmt.Fprintln(out, boxStyle.Render(b.String()))
}
