package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"dicomslicesto3d/pkg/session"
	"dicomslicesto3d/pkg/visualization"
)

var (
	reconstructKey string
	sliceDir       string
	depthIndex     int
	rowIndex       int
	colIndex       int
)

// reconstructCmd stacks one directory and reports on the volume
var reconstructCmd = &cobra.Command{
	Use:   "reconstruct <dir>",
	Short: "Reconstruct a DICOM directory into a volume",
	Long: `Decode every candidate slice of a directory, order the slices by location,
stack them into a volume and print the patient information and volume
statistics. The orthogonal views are saved to the output directory.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		s := session.New(cfg, nil, slog.Default())

		start := time.Now()
		set, err := s.ProcessDicomDir(args[0], reconstructKey)
		if err != nil {
			fatal("Reconstruction failed", err)
		}

		p, err := s.RegisterPatient(reconstructKey, reconstructKey, session.Overrides{})
		if err != nil {
			fatal("Failed to register patient", err)
		}

		fmt.Fprintf(out, "Reconstructed %d slices in %.2f seconds (%d skipped)\n",
			len(set.Slices), time.Since(start).Seconds(), len(set.Skipped))
		fmt.Fprintf(out, "Set ID: %s\n", set.ID)
		for _, sk := range set.Skipped {
			fmt.Fprintf(out, "  skipped %s: %v\n", sk.Filename, sk.Err)
		}
		if set.FellBack {
			fmt.Fprintln(out, "Slice locations incomplete; file order kept")
		}
		fmt.Fprintf(out, "Volume: %d x %d x %d\n", set.Volume.Depth, set.Volume.Height, set.Volume.Width)
		fmt.Fprintf(out, "Intensity: mean %.3f, stddev %.3f, min %.3f, max %.3f\n",
			set.Stats.Mean, set.Stats.StdDev, set.Stats.Min, set.Stats.Max)
		fmt.Fprintln(out, p.String())

		res, err := s.Orthogonal(reconstructKey, visualization.Indices{
			Depth: optionalIndex(depthIndex),
			Row:   optionalIndex(rowIndex),
			Col:   optionalIndex(colIndex),
		})
		if err != nil {
			fatal("Failed to extract orthogonal views", err)
		}
		if res.Path != "" {
			fmt.Fprintf(out, "Orthogonal views (z=%d, y=%d, x=%d) saved to: %s\n",
				res.Views.DepthIndex, res.Views.RowIndex, res.Views.ColIndex, res.Path)
		}

		if sliceDir != "" {
			viewer := visualization.NewViewer(set.Volume)
			for _, axis := range []visualization.Axis{visualization.Axial, visualization.Coronal, visualization.Sagittal} {
				dir := filepath.Join(sliceDir, axis.String())
				if err := viewer.SaveSliceSequence(axis, dir); err != nil {
					fatal("Failed to save slices", err)
				}
			}
			fmt.Fprintf(out, "Slice sequences saved to: %s\n", sliceDir)
		}
	},
}

// optionalIndex maps negative flag values to the axis center
func optionalIndex(v int) *int {
	if v < 0 {
		return nil
	}
	return &v
}

func init() {
	reconstructCmd.Flags().StringVarP(&reconstructKey, "key", "k", "scan", "Key the set and patient are stored and named under")
	reconstructCmd.Flags().StringVar(&sliceDir, "extract-slices", "", "Directory to save every slice along all axes")
	reconstructCmd.Flags().IntVar(&depthIndex, "depth", -1, "Axial cut position (default: center)")
	reconstructCmd.Flags().IntVar(&rowIndex, "row", -1, "Coronal cut position (default: center)")
	reconstructCmd.Flags().IntVar(&colIndex, "col", -1, "Sagittal cut position (default: center)")
	rootCmd.AddCommand(reconstructCmd)
}
