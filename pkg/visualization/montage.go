package visualization

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"dicomslicesto3d/internal/models"
)

const (
	montagePadding = 10
	titleBarHeight = 20
)

// Panel is one titled image of a montage
type Panel struct {
	Title string
	Image image.Image
}

// PlanePanel wraps a plane as a panel, stretching its intensities to 8 bits
func PlanePanel(title string, p *models.Plane) Panel {
	return Panel{Title: title, Image: p.ToGray()}
}

// Panels returns the three views as panels in axial, coronal, sagittal order
func (o *OrthogonalViews) Panels() []Panel {
	return []Panel{
		PlanePanel("Axial", o.Axial),
		PlanePanel("Coronal", o.Coronal),
		PlanePanel("Sagittal", o.Sagittal),
	}
}

// RenderMontage lays the panels out left to right on a black canvas, each
// under its title. A non-empty heading is written above all panels.
func RenderMontage(heading string, panels []Panel) *image.RGBA {
	top := montagePadding
	if heading != "" {
		top += titleBarHeight
	}

	width, height := montagePadding, 0
	for _, p := range panels {
		b := p.Image.Bounds()
		width += b.Dx() + montagePadding
		if b.Dy() > height {
			height = b.Dy()
		}
	}
	height += top + titleBarHeight + montagePadding

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	if heading != "" {
		drawLabel(canvas, montagePadding, montagePadding+13, heading)
	}

	x := montagePadding
	for _, p := range panels {
		b := p.Image.Bounds()
		drawLabel(canvas, x, top+13, p.Title)
		dst := image.Rect(x, top+titleBarHeight, x+b.Dx(), top+titleBarHeight+b.Dy())
		draw.Draw(canvas, dst, p.Image, b.Min, draw.Src)
		x += b.Dx() + montagePadding
	}

	return canvas
}

// drawLabel writes white text with its baseline at (x, y)
func drawLabel(dst draw.Image, x, y int, text string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
