package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taigrr/meshview/pkg/models"
	"github.com/taigrr/meshview/pkg/render"
)

type renderFlags struct {
	out           string
	width, height int
	cam           render.Camera
}

func newRenderCmd(a *app) *cobra.Command {
	f := renderFlags{cam: render.DefaultCamera()}
	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a mesh to a PNG image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd.ErrOrStderr(), false); err != nil {
				return err
			}
			defer a.close()

			out, err := a.renderPNG(args[0], f)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.out, "output", "o", "", "PNG path (default <file>.png)")
	fl.IntVar(&f.width, "width", 800, "image width")
	fl.IntVar(&f.height, "height", 600, "image height")
	fl.Float64Var(&f.cam.RotX, "pitch", render.DefaultRotX, "camera pitch in degrees")
	fl.Float64Var(&f.cam.RotY, "yaw", render.DefaultRotY, "camera yaw in degrees")
	fl.Float64Var(&f.cam.Zoom, "zoom", render.DefaultZoom, "zoom factor")
	fl.Float64Var(&f.cam.PanX, "pan-x", 0, "horizontal pan in pixels")
	fl.Float64Var(&f.cam.PanY, "pan-y", 0, "vertical pan in pixels")
	return cmd
}

func (a *app) renderPNG(path string, f renderFlags) (string, error) {
	if f.width <= 0 || f.height <= 0 {
		return "", fmt.Errorf("invalid image size %dx%d", f.width, f.height)
	}

	scene, stats, err := models.Load(path, a.cfg.LoadOptions())
	if err != nil {
		return "", err
	}
	a.logger.Debug("parsed", "path", path, "lines", stats.Lines, "skipped", stats.SkippedLines)

	cam := f.cam
	cam.SetZoom(cam.Zoom)
	vp := render.Viewport{Width: f.width, Height: f.height}
	frame := render.Render(models.Normalize(scene), cam, vp, a.cfg.RenderOptions())

	fb := render.NewFramebuffer(f.width, f.height)
	fb.Paint(frame)

	out := f.out
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + ".png"
	}
	if err := fb.SavePNG(out); err != nil {
		return "", err
	}
	a.logger.Info("rendered", "path", out, "drawn", frame.Stats.Drawn, "culled", frame.Stats.Culled)
	return out, nil
}
