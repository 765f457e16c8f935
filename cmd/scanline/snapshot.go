package main

import (
	"fmt"
	"strconv"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/taigrr/scanline/pkg/input"
	"github.com/taigrr/scanline/pkg/render"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A8A8A8"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
)

func snapshotCmd(opts *options) *cobra.Command {
	var (
		out    string
		frames int
	)
	cmd := &cobra.Command{
		Use:   "snapshot [model.obj|model.glb]",
		Short: "Render one frame to a PNG file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			eng, name, err := newEngine(opts, cfg, args)
			if err != nil {
				return err
			}

			tracker := input.NewTracker()
			dt := 1 / float64(cfg.TargetFPS)
			for range max(frames, 1) {
				if err := eng.Update(tracker.Snapshot(), dt); err != nil {
					return err
				}
			}
			renderErr := eng.Render()

			if err := eng.Frame().SavePNG(out); err != nil {
				return fmt.Errorf("save %s: %w", out, err)
			}
			printSummary(cmd, name, out, eng.Renderer.Stats, renderErr)
			return renderErr
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "scanline.png", "output PNG path")
	cmd.Flags().IntVar(&frames, "frames", 1, "engine updates to run before rendering")
	return cmd
}

func printSummary(cmd *cobra.Command, name, out string, st render.Stats, renderErr error) {
	rows := [][]string{
		{"commands", strconv.Itoa(st.Commands)},
		{"culled by bounds", strconv.Itoa(st.CommandsCulled)},
		{"triangles", strconv.Itoa(st.Triangles)},
		{"clipped", strconv.Itoa(st.Clipped)},
		{"frustum culled", strconv.Itoa(st.FrustumCulled)},
		{"backface culled", strconv.Itoa(st.BackfaceCulled)},
		{"drawn", strconv.Itoa(st.Drawn)},
		{"fragments", strconv.Itoa(st.Fragments)},
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("stage", "count").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Bold(true)
			}
			if col == 0 {
				return s.Inherit(labelStyle)
			}
			return s.Align(lipgloss.Right)
		})

	w := cmd.OutOrStdout()
	lipgloss.Fprintln(w, titleStyle.Render(name)+" "+labelStyle.Render("-> "+out))
	lipgloss.Fprintln(w, t.String())
	if renderErr != nil {
		lipgloss.Fprintln(w, errStyle.Render("frame failed: "+renderErr.Error()))
	}
}
