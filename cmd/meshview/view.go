package main

import (
	"github.com/spf13/cobra"

	"github.com/taigrr/meshview/internal/tui"
	"github.com/taigrr/meshview/internal/window"
	"github.com/taigrr/meshview/pkg/viewer"
)

type viewFlags struct {
	noWatch   bool
	noInertia bool
	fps       int
}

func (f *viewFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.BoolVar(&f.noWatch, "no-watch", false, "do not reload files when they change")
	fl.BoolVar(&f.noInertia, "no-inertia", false, "stop rotating when the mouse is released")
	fl.IntVar(&f.fps, "fps", tui.DefaultFPS, "animation frame rate")
}

func (a *app) newViewer() *viewer.Viewer {
	opts := append(a.cfg.ViewerOptions(), viewer.WithLogger(a.logger))
	return viewer.New(opts...)
}

func (a *app) runView(cmd *cobra.Command, files []string, f viewFlags) error {
	if err := a.setup(cmd.ErrOrStderr(), true); err != nil {
		return err
	}
	defer a.close()

	return tui.Run(cmd.Context(), a.newViewer(), tui.Options{
		Logger:   a.logger,
		Files:    files,
		Inertia:  a.cfg.Inertia && !f.noInertia,
		FPS:      f.fps,
		Watch:    !f.noWatch,
		Debounce: a.cfg.WatchDebounce.Duration,
	})
}

func newWindowCmd(a *app) *cobra.Command {
	var (
		width, height int
		noWatch       bool
	)
	cmd := &cobra.Command{
		Use:   "window [file...]",
		Short: "View meshes in a desktop window",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd.ErrOrStderr(), false); err != nil {
				return err
			}
			defer a.close()

			return window.Run(cmd.Context(), a.newViewer(), window.Options{
				Logger:   a.logger,
				Files:    args,
				Width:    width,
				Height:   height,
				Watch:    !noWatch,
				Debounce: a.cfg.WatchDebounce.Duration,
			})
		},
	}
	cmd.Flags().IntVar(&width, "width", window.DefaultWidth, "initial window width")
	cmd.Flags().IntVar(&height, "height", window.DefaultHeight, "initial window height")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload files when they change")
	return cmd
}
