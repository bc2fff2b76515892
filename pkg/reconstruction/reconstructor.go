package reconstruction

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"dicomslicesto3d/internal/models"
	"dicomslicesto3d/pkg/loader"
)

// VolumeStats summarizes the intensity distribution of a reconstructed volume.
type VolumeStats struct {
	// Mean is the average voxel intensity
	Mean float64

	// StdDev is the sample standard deviation of voxel intensities
	StdDev float64

	// Min and Max bound the voxel intensities
	Min float64
	Max float64
}

// Params holds the reconstruction parameters.
type Params struct {
	// InputDir is the directory containing the single-slice files.
	InputDir string

	// Pattern selects candidate files inside InputDir (case-insensitive glob).
	// Empty means loader.DefaultPattern.
	Pattern string
}

// Result is everything produced by one reconstruction run.
type Result struct {
	// Volume is the assembled 3D volume
	Volume *models.Volume

	// Filenames lists the source file of each depth index, in volume order
	Filenames []string

	// Skipped lists candidate files that failed to decode
	Skipped []loader.Skipped

	// FellBack is true when slice locations were incomplete and the input order was kept
	FellBack bool

	// Stats summarizes the voxel intensities
	Stats VolumeStats
}

// Reconstructor handles the reconstruction of a volume from a directory of
// single-slice files.
//
// The reconstruction process consists of three steps:
// 1. Loading and decoding the candidate slice files
// 2. Ordering the slices by slice location, when every slice has one
// 3. Stacking the ordered slices into a volume
type Reconstructor struct {
	// params stores the reconstruction configuration
	params *Params

	// decoder turns one file into a slice
	decoder loader.Decoder

	logger *slog.Logger
}

// NewReconstructor creates a new reconstructor instance with the provided parameters.
//
// Parameters:
//   - params: Configuration parameters for the reconstruction process
//   - decoder: Slice decoder used for every candidate file
//   - logger: Destination for progress and diagnostics; nil discards them
//
// Returns:
//   - A new Reconstructor instance
func NewReconstructor(params *Params, decoder loader.Decoder, logger *slog.Logger) *Reconstructor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Reconstructor{
		params:  params,
		decoder: decoder,
		logger:  logger,
	}
}

// Process runs the complete reconstruction pipeline.
//
// Returns:
//   - The reconstruction result, or an error if the directory cannot be read,
//     no slice could be decoded (EmptyInput) or the slices disagree on their
//     dimensions (DimensionMismatch)
func (r *Reconstructor) Process() (*Result, error) {
	r.logger.Info("Step 1: Loading input slices...", "dir", r.params.InputDir)
	slices, skipped, err := loader.New(r.decoder, r.params.Pattern, r.logger).Load(r.params.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load slices: %w", err)
	}
	r.logger.Info("Slices decoded", "count", len(slices), "skipped", len(skipped))

	r.logger.Info("Step 2: Ordering slices...")
	ordered, fellBack := OrderSlices(slices, r.logger)

	r.logger.Info("Step 3: Assembling volume...")
	vol, err := Assemble(ordered)
	if err != nil {
		return nil, err
	}

	stats := ComputeStats(vol)
	r.logger.Info("Volume reconstructed",
		"depth", vol.Depth, "height", vol.Height, "width", vol.Width,
		"mean", stats.Mean, "stddev", stats.StdDev)

	filenames := make([]string, len(ordered))
	for i, s := range ordered {
		filenames[i] = s.Metadata.Filename
	}

	return &Result{
		Volume:    vol,
		Filenames: filenames,
		Skipped:   skipped,
		FellBack:  fellBack,
		Stats:     stats,
	}, nil
}

// ComputeStats summarizes the voxel intensities of a volume.
func ComputeStats(vol *models.Volume) VolumeStats {
	if vol == nil || len(vol.Data) == 0 {
		return VolumeStats{}
	}

	mean, std := stat.MeanStdDev(vol.Data, nil)
	if math.IsNaN(std) {
		// A single voxel has no sample deviation
		std = 0
	}
	return VolumeStats{
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(vol.Data),
		Max:    floats.Max(vol.Data),
	}
}
