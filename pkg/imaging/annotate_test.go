package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout(t *testing.T) {
	circle := Layout(Circle, 200, 100)
	assert.Equal(t, image.Pt(100, 50), circle.Center)
	assert.Equal(t, 25, circle.Radius)
	assert.Equal(t, image.Pt(20, 40), circle.Text)

	square := Layout(Square, 200, 100)
	assert.Equal(t, image.Rect(84, 34, 116, 66), square.Rect)
	assert.Equal(t, image.Pt(94, 64), square.Text)
}

func TestAnnotationLines(t *testing.T) {
	a := Annotation{Caption: "Binarized (binary)", Threshold: 127, KernelSize: 5}

	assert.Equal(t, []string{"Binarized (binary)", "Threshold: 127", "Kernel: 5x5"}, a.Lines())
}

func TestParseShape(t *testing.T) {
	assert.Equal(t, Square, ParseShape("Square"))
	assert.Equal(t, Circle, ParseShape("circle"))
	assert.Equal(t, Circle, ParseShape("triangle"))
	assert.Equal(t, "square", Square.String())
}

// countWhite counts pure white pixels inside r
func countWhite(img *image.RGBA, r image.Rectangle) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.RGBAAt(x, y) == TextColor {
				n++
			}
		}
	}
	return n
}

func TestAnnotateCircle(t *testing.T) {
	img := uniformGray(400, 400, 40)

	out, err := Annotate(img, Annotation{Shape: Circle, Caption: "Binarized", Threshold: 127, KernelSize: 5})
	require.NoError(t, err)

	assert.Equal(t, img.Bounds(), out.Bounds())
	gray := color.RGBA{40, 40, 40, 255}
	assert.Equal(t, gray, out.RGBAAt(0, 0))
	assert.Equal(t, gray, out.RGBAAt(399, 399))
	assert.Equal(t, gray, out.RGBAAt(200, 150))

	// Radius 100 around (200, 200)
	assert.Equal(t, OutlineColor, out.RGBAAt(300, 200))
	assert.Equal(t, OutlineColor, out.RGBAAt(100, 200))
	assert.Equal(t, OutlineColor, out.RGBAAt(200, 100))
	assert.Equal(t, OutlineColor, out.RGBAAt(200, 300))

	// Caption, threshold and kernel lines start at (120, 190), 25px apart
	for i := 0; i < 3; i++ {
		base := 190 + i*LineSpacing
		assert.Positive(t, countWhite(out, image.Rect(115, base-18, 300, base+4)), "line %d", i)
	}

	assert.Equal(t, uint8(40), img.GrayAt(300, 200).Y, "input must be untouched")
}

func TestAnnotateSquare(t *testing.T) {
	img := uniformGray(90, 120, 0)

	out, err := Annotate(img, Annotation{Shape: Square, Caption: "x", Threshold: 1, KernelSize: 1})
	require.NoError(t, err)

	g := Layout(Square, 90, 120)
	assert.Equal(t, image.Rect(30, 45, 60, 75), g.Rect)

	assert.Equal(t, OutlineColor, out.RGBAAt(g.Rect.Min.X, 60))
	assert.Equal(t, OutlineColor, out.RGBAAt(g.Rect.Min.X-1, 60))
	assert.Equal(t, OutlineColor, out.RGBAAt(g.Rect.Min.X+1, 60))
	assert.Equal(t, OutlineColor, out.RGBAAt(g.Rect.Max.X, 55))
	assert.Equal(t, OutlineColor, out.RGBAAt(33, g.Rect.Max.Y))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, out.RGBAAt(g.Rect.Min.X-3, 60))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, out.RGBAAt(g.Rect.Min.X+3, 50))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, out.RGBAAt(5, 5))
}

func TestAnnotateKeepsColorInput(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 60, 60))
	for i := 0; i < len(img.Pix); i += 4 {
		copy(img.Pix[i:i+4], []uint8{10, 20, 30, 255})
	}

	out, err := Annotate(img, Annotation{Shape: Circle})
	require.NoError(t, err)

	assert.Equal(t, color.RGBA{10, 20, 30, 255}, out.RGBAAt(59, 0))
}
