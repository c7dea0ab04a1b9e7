package main

import (
	"fmt"
	"io"
	"strconv"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/taigrr/meshview/pkg/models"
)

var (
	accent     = lipgloss.Color("#00e5a0")
	dim        = lipgloss.Color("#7070a0")
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	keyStyle   = lipgloss.NewStyle().Foreground(dim).Width(16)
	cellStyle  = lipgloss.NewStyle().Padding(0, 1)
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <file...>",
		Short: "Print mesh statistics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd.ErrOrStderr(), false); err != nil {
				return err
			}
			defer a.close()

			for i, path := range args {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				scene, stats, err := models.Load(path, a.cfg.LoadOptions())
				if err != nil {
					return err
				}
				writeInfo(cmd.OutOrStdout(), path, scene, stats)
			}
			return nil
		},
	}
}

func writeInfo(w io.Writer, path string, scene *models.Scene, stats models.LoadStats) {
	center, _ := scene.Centroid()
	radius := scene.MaxDeviation(center)

	fmt.Fprintln(w, titleStyle.Render(path))
	field := func(k string, v any) {
		fmt.Fprintln(w, keyStyle.Render(k)+fmt.Sprint(v))
	}
	field("format", models.DetectFormat(path))
	field("meshes", scene.MeshCount())
	field("vertices", scene.VertexCount())
	field("triangles", scene.TriangleCount())
	field("lines", stats.Lines)
	field("skipped lines", stats.SkippedLines)
	field("dropped meshes", stats.DroppedMeshes)
	field("center", fmt.Sprintf("(%.3f, %.3f, %.3f)", center.X, center.Y, center.Z))
	field("radius", fmt.Sprintf("%.3f", radius))

	if scene.Empty() {
		return
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(dim)).
		Headers("#", "name", "vertices", "triangles", "color").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return cellStyle.Bold(true)
			}
			if col == 4 {
				return cellStyle.Background(scene.Meshes[row].Color)
			}
			return cellStyle
		})
	for i, m := range scene.Meshes {
		t.Row(
			strconv.Itoa(i),
			m.Name,
			strconv.Itoa(len(m.Vertices)),
			strconv.Itoa(len(m.Triangles)),
			fmt.Sprintf("#%02x%02x%02x", m.Color.R, m.Color.G, m.Color.B),
		)
	}
	fmt.Fprintln(w, t.Render())
}
