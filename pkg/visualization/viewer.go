package visualization

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dicomslicesto3d/internal/models"
	perrors "dicomslicesto3d/pkg/errors"
	"dicomslicesto3d/pkg/output"
)

// Axis selects one of the three canonical cross-sections of a volume
type Axis int

const (
	// Axial fixes a depth index; the view is rows x cols
	Axial Axis = iota

	// Coronal fixes a row index; the view is depth x cols
	Coronal

	// Sagittal fixes a column index; the view is depth x rows
	Sagittal
)

func (a Axis) String() string {
	switch a {
	case Axial:
		return "axial"
	case Coronal:
		return "coronal"
	case Sagittal:
		return "sagittal"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// ParseAxis accepts an axis name or its z/y/x letter
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(s) {
	case "axial", "z":
		return Axial, nil
	case "coronal", "y":
		return Coronal, nil
	case "sagittal", "x":
		return Sagittal, nil
	}
	return 0, fmt.Errorf("invalid axis: %s (must be axial, coronal or sagittal)", s)
}

// Indices selects the cut position on each axis. Nil fields default to the
// center of the axis.
type Indices struct {
	Depth *int
	Row   *int
	Col   *int
}

// OrthogonalViews holds the three canonical cross-sections
type OrthogonalViews struct {
	Axial    *models.Plane
	Coronal  *models.Plane
	Sagittal *models.Plane

	// DepthIndex, RowIndex and ColIndex are the resolved cut positions
	DepthIndex int
	RowIndex   int
	ColIndex   int
}

// Viewer extracts cross-sections from a volume. It never modifies the volume.
type Viewer struct {
	volume *models.Volume
}

// NewViewer creates a new viewer over vol
func NewViewer(vol *models.Volume) *Viewer {
	return &Viewer{volume: vol}
}

// extent returns the number of positions along axis
func (v *Viewer) extent(axis Axis) int {
	switch axis {
	case Axial:
		return v.volume.Depth
	case Coronal:
		return v.volume.Height
	case Sagittal:
		return v.volume.Width
	}
	return 0
}

// ExtractSlice extracts a 2D cross-section at position along axis.
// Positions outside the axis extent fail with IndexOutOfRange.
func (v *Viewer) ExtractSlice(axis Axis, position int) (*models.Plane, error) {
	n := v.extent(axis)
	if n == 0 {
		return nil, fmt.Errorf("invalid axis: %s", axis)
	}
	if position < 0 || position >= n {
		return nil, perrors.New(perrors.IndexOutOfRange, "extract "+axis.String(),
			"position %d outside [0, %d)", position, n)
	}

	vol := v.volume
	var plane *models.Plane

	switch axis {
	case Axial:
		plane = models.NewPlane(vol.Width, vol.Height)
		start := vol.Index(position, 0, 0)
		copy(plane.Pix, vol.Data[start:start+vol.Width*vol.Height])

	case Coronal:
		plane = models.NewPlane(vol.Width, vol.Depth)
		for z := 0; z < vol.Depth; z++ {
			for x := 0; x < vol.Width; x++ {
				plane.Set(x, z, vol.At(z, position, x))
			}
		}

	case Sagittal:
		plane = models.NewPlane(vol.Height, vol.Depth)
		for z := 0; z < vol.Depth; z++ {
			for y := 0; y < vol.Height; y++ {
				plane.Set(y, z, vol.At(z, y, position))
			}
		}
	}

	return plane, nil
}

// Orthogonal extracts the axial, coronal and sagittal views at the requested
// indices, defaulting each unset index to the axis center.
func (v *Viewer) Orthogonal(idx Indices) (*OrthogonalViews, error) {
	resolve := func(p *int, axis Axis) int {
		if p != nil {
			return *p
		}
		return v.extent(axis) / 2
	}

	views := &OrthogonalViews{
		DepthIndex: resolve(idx.Depth, Axial),
		RowIndex:   resolve(idx.Row, Coronal),
		ColIndex:   resolve(idx.Col, Sagittal),
	}

	var err error
	if views.Axial, err = v.ExtractSlice(Axial, views.DepthIndex); err != nil {
		return nil, err
	}
	if views.Coronal, err = v.ExtractSlice(Coronal, views.RowIndex); err != nil {
		return nil, err
	}
	if views.Sagittal, err = v.ExtractSlice(Sagittal, views.ColIndex); err != nil {
		return nil, err
	}
	return views, nil
}

// SaveSliceSequence extracts and saves every slice along the specified axis
func (v *Viewer) SaveSliceSequence(axis Axis, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	for pos := 0; pos < v.extent(axis); pos++ {
		plane, err := v.ExtractSlice(axis, pos)
		if err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("slice_%s_%03d.png", axis, pos))
		if err := output.WritePNG(plane.ToGray(), filename); err != nil {
			return err
		}
	}

	return nil
}
