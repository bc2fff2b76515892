package reconstruction

import (
	"dicomslicesto3d/internal/models"
	perrors "dicomslicesto3d/pkg/errors"
)

// Assemble stacks ordered slices into a volume. Every slice must match the
// first slice's width and height; a mismatch is reported, never cropped or
// padded.
func Assemble(slices []*models.Slice) (*models.Volume, error) {
	if len(slices) == 0 {
		return nil, perrors.New(perrors.EmptyInput, "assemble", "no decoded slices")
	}

	width := slices[0].Plane.Width
	height := slices[0].Plane.Height
	for i, s := range slices[1:] {
		if s.Plane.Width != width || s.Plane.Height != height {
			return nil, perrors.New(perrors.DimensionMismatch, "assemble",
				"slice %d (%s) is %dx%d, expected %dx%d",
				i+1, s.Metadata.Filename, s.Plane.Width, s.Plane.Height, width, height)
		}
	}

	frameSize := width * height
	vol := &models.Volume{
		Data:   make([]float64, frameSize*len(slices)),
		Width:  width,
		Height: height,
		Depth:  len(slices),
		Slices: make([]*models.Slice, len(slices)),
	}
	copy(vol.Slices, slices)

	for z, s := range slices {
		copy(vol.Data[z*frameSize:(z+1)*frameSize], s.Plane.Pix)
	}

	return vol, nil
}
