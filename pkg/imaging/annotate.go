package imaging

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"gocv.io/x/gocv"
)

// Shape is the marker drawn by Annotate
type Shape int

const (
	Circle Shape = iota
	Square
)

func (s Shape) String() string {
	if s == Square {
		return "square"
	}
	return "circle"
}

// ParseShape maps "square" to Square and anything else to Circle
func ParseShape(s string) Shape {
	if strings.EqualFold(strings.TrimSpace(s), "square") {
		return Square
	}
	return Circle
}

// Fixed annotation styling
var (
	OutlineColor = color.RGBA{0, 255, 0, 255}
	TextColor    = color.RGBA{255, 255, 255, 255}
)

const (
	// OutlineThickness is the stroke width of the marker in pixels
	OutlineThickness = 3

	// LineSpacing separates the caption from each sub-caption
	LineSpacing = 25

	// FontScale and TextThickness size the Hershey simplex captions
	FontScale     = 0.6
	TextThickness = 2
)

// Annotation describes what Annotate draws
type Annotation struct {
	Shape      Shape
	Caption    string
	Threshold  int
	KernelSize int
}

// Lines returns the caption followed by the threshold and kernel sub-captions
func (a Annotation) Lines() []string {
	return []string{
		a.Caption,
		fmt.Sprintf("Threshold: %d", a.Threshold),
		fmt.Sprintf("Kernel: %dx%d", a.KernelSize, a.KernelSize),
	}
}

// Geometry is the placement computed for an annotation
type Geometry struct {
	Center image.Point

	// Radius is set for circles
	Radius int

	// Rect is the square outline, set for squares
	Rect image.Rectangle

	// Text is the baseline origin of the caption; sub-captions follow LineSpacing below
	Text image.Point
}

// Layout centers the marker on a width x height image. The circle radius is
// min/4 and the square side min/3.
func Layout(shape Shape, width, height int) Geometry {
	c := image.Pt(width/2, height/2)
	m := width
	if height < m {
		m = height
	}

	g := Geometry{Center: c}
	if shape == Square {
		side := m / 3
		g.Rect = image.Rect(c.X-side/2, c.Y-side/2, c.X+side/2, c.Y+side/2)
		g.Text = image.Pt(g.Rect.Min.X+10, g.Rect.Min.Y+30)
	} else {
		g.Radius = m / 4
		g.Text = image.Pt(c.X-80, c.Y-10)
	}
	return g
}

// Annotate draws the marker and captions over a BGR copy of img and returns
// the result as RGBA. Pixels outside the marker outline and text glyphs keep
// their values.
func Annotate(img image.Image, a Annotation) (*image.RGBA, error) {
	mat, err := bgrMat(img)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	g := Layout(a.Shape, mat.Cols(), mat.Rows())
	if a.Shape == Square {
		// gocv rectangles exclude Max; the layout's corners are inclusive
		r := image.Rectangle{Min: g.Rect.Min, Max: g.Rect.Max.Add(image.Pt(1, 1))}
		gocv.Rectangle(&mat, r, OutlineColor, OutlineThickness)
	} else {
		gocv.Circle(&mat, g.Center, g.Radius, OutlineColor, OutlineThickness)
	}

	for i, line := range a.Lines() {
		org := image.Pt(g.Text.X, g.Text.Y+i*LineSpacing)
		gocv.PutText(&mat, line, org, gocv.FontHersheySimplex, FontScale, TextColor, TextThickness)
	}

	return matToRGBA(mat), nil
}
