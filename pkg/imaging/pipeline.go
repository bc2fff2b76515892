package imaging

import (
	"fmt"
	"image"
)

// Params selects the settings of the 2D chain
type Params struct {
	Variant    Variant
	Threshold  int
	KernelSize int
	Shape      Shape
}

// Stages keeps every intermediate image of the chain
type Stages struct {
	Binarized *image.Gray
	Opened    *image.Gray
	Annotated *image.RGBA
}

// Process runs binarization, opening and annotation in that order. The
// caption names the variant; the sub-captions carry threshold and kernel size.
func Process(img image.Image, p Params) (*Stages, error) {
	bin, err := Binarize(img, p.Variant, p.Threshold)
	if err != nil {
		return nil, err
	}

	opened, err := Open(bin, p.KernelSize)
	if err != nil {
		return nil, err
	}

	annotated, err := Annotate(opened, Annotation{
		Shape:      p.Shape,
		Caption:    fmt.Sprintf("Binarized (%s)", p.Variant),
		Threshold:  p.Threshold,
		KernelSize: p.KernelSize,
	})
	if err != nil {
		return nil, err
	}

	return &Stages{
		Binarized: bin,
		Opened:    opened,
		Annotated: annotated,
	}, nil
}
