package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"dicomslicesto3d/pkg/imaging"
	"dicomslicesto3d/pkg/session"
)

var (
	variantName string
	threshold   int
	kernelSize  int
	shapeName   string
)

// processCmd runs the 2D chain on one image file
var processCmd = &cobra.Command{
	Use:   "process <image>",
	Short: "Threshold, open and annotate a PNG/JPEG image",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		p := cfg.Processing
		if cmd.Flags().Changed("variant") {
			p.Variant = variantName
		}
		if cmd.Flags().Changed("threshold") {
			p.Threshold = threshold
		}
		if cmd.Flags().Changed("kernel") {
			p.KernelSize = kernelSize
		}
		if cmd.Flags().Changed("shape") {
			p.Shape = shapeName
		}

		variant, err := imaging.ParseVariant(p.Variant)
		if err != nil {
			fatal("Invalid variant", err)
		}

		s := session.New(cfg, nil, slog.Default())
		path := args[0]
		key := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if _, err := s.AddImage(path, key); err != nil {
			fatal("Failed to load image", err)
		}

		res, err := s.ProcessImage(key, imaging.Params{
			Variant:    variant,
			Threshold:  p.Threshold,
			KernelSize: p.KernelSize,
			Shape:      imaging.ParseShape(p.Shape),
		})
		if err != nil {
			fatal("Processing failed", err)
		}

		if res.Path != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Processed image saved as: %s\n", res.Path)
		}
	},
}

func init() {
	names := make([]string, 0, len(imaging.Variants()))
	for _, v := range imaging.Variants() {
		names = append(names, v.String())
	}

	processCmd.Flags().StringVar(&variantName, "variant", "binary", "Threshold variant ("+strings.Join(names, ", ")+")")
	processCmd.Flags().IntVar(&threshold, "threshold", 127, "Threshold in [0, 255]")
	processCmd.Flags().IntVar(&kernelSize, "kernel", 5, "Side of the square opening kernel")
	processCmd.Flags().StringVar(&shapeName, "shape", "circle", "Annotation shape (circle or square)")
	rootCmd.AddCommand(processCmd)
}
