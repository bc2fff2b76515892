package models

import (
	"image"
	"image/color"
	"math"
)

// Plane is a 2D grid of intensity samples in row-major order
type Plane struct {
	// Width is the number of columns
	Width int

	// Height is the number of rows
	Height int

	// Pix holds Width*Height samples, row by row
	Pix []float64
}

// NewPlane allocates a zeroed plane
func NewPlane(width, height int) *Plane {
	return &Plane{
		Width:  width,
		Height: height,
		Pix:    make([]float64, width*height),
	}
}

// At returns the sample at column x, row y
func (p *Plane) At(x, y int) float64 {
	return p.Pix[y*p.Width+x]
}

// Set stores a sample at column x, row y
func (p *Plane) Set(x, y int, v float64) {
	p.Pix[y*p.Width+x] = v
}

// Clone returns a deep copy of the plane
func (p *Plane) Clone() *Plane {
	out := &Plane{Width: p.Width, Height: p.Height, Pix: make([]float64, len(p.Pix))}
	copy(out.Pix, p.Pix)
	return out
}

// PlaneFromImage converts any image to a plane through the 16-bit grayscale model
func PlaneFromImage(img image.Image) *Plane {
	b := img.Bounds()
	p := NewPlane(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			g := color.Gray16Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray16)
			p.Set(x, y, float64(g.Y))
		}
	}
	return p
}

// ToGray renders the plane as an 8-bit image, stretching [min, max] to [0, 255].
// A constant plane renders black.
func (p *Plane) ToGray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, p.Width, p.Height))
	if len(p.Pix) == 0 {
		return img
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range p.Pix {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo

	for i, v := range p.Pix {
		var g uint8
		if span > 0 {
			g = uint8(math.Round((v - lo) / span * 255))
		}
		img.Pix[(i/p.Width)*img.Stride+i%p.Width] = g
	}
	return img
}

// NameKind distinguishes the two shapes a patient name can take
type NameKind int

const (
	// NamePlain is an unstructured name string
	NamePlain NameKind = iota

	// NameStructured is a person name split into family and given components
	NameStructured
)

// PatientName is decided once at decode time; nothing downstream inspects the raw value again
type PatientName struct {
	Kind   NameKind
	Text   string
	Family string
	Given  string
}

// PlainName builds an unstructured name
func PlainName(text string) PatientName {
	return PatientName{Kind: NamePlain, Text: text}
}

// StructuredName builds a family/given name
func StructuredName(family, given string) PatientName {
	return PatientName{Kind: NameStructured, Family: family, Given: given}
}

// String renders structured names as "Family Given"
func (n PatientName) String() string {
	if n.Kind == NameStructured {
		return n.Family + " " + n.Given
	}
	return n.Text
}

// Metadata holds the acquisition fields consulted by the pipeline.
// Nil pointers mark fields that were absent or unreadable.
type Metadata struct {
	PatientName *PatientName
	PatientAge  *string
	PatientID   *string

	// SliceLocation is the position of the slice along the acquisition axis
	SliceLocation *float64

	// Filename is the original filename of the slice
	Filename string
}

// Slice represents a single decoded slice with metadata
type Slice struct {
	// Plane is the pixel data of the slice
	Plane *Plane

	// Metadata is the acquisition metadata of the slice
	Metadata Metadata
}

// Volume represents a 3D volume stacked from ordered slices
type Volume struct {
	// Data is the 3D volume data as a 1D array indexed [depth][row][col]
	Data []float64

	// Width is the number of columns of every slice
	Width int

	// Height is the number of rows of every slice
	Height int

	// Depth is the number of slices
	Depth int

	// Slices are the ordered slices the volume was built from
	Slices []*Slice
}

// Index returns the offset of voxel (z, y, x) in Data
func (v *Volume) Index(z, y, x int) int {
	return z*v.Width*v.Height + y*v.Width + x
}

// At returns the voxel at depth z, row y, column x
func (v *Volume) At(z, y, x int) float64 {
	return v.Data[v.Index(z, y, x)]
}

// Patient associates identity fields with a shared, read-only volume
type Patient struct {
	Name   string
	Age    string
	ID     string
	Volume *Volume
}

func (p *Patient) String() string {
	return "Patient: " + p.Name + ", Age: " + p.Age + ", ID: " + p.ID
}
