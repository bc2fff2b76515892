package imaging

import (
	"image"

	"gocv.io/x/gocv"

	perrors "dicomslicesto3d/pkg/errors"
)

// morphOp runs one OpenCV morphology operation with a k x k rectangular element
type morphOp func(src gocv.Mat, dst *gocv.Mat, kernel gocv.Mat)

// Open performs a morphological opening (erosion followed by dilation) with a
// k x k all-ones structuring element anchored at its center. Neighbours
// outside the image are ignored.
func Open(img *image.Gray, k int) (*image.Gray, error) {
	return morph("open", img, k, func(src gocv.Mat, dst *gocv.Mat, kernel gocv.Mat) {
		gocv.MorphologyEx(src, dst, gocv.MorphOpen, kernel)
	})
}

// Erode applies a k x k minimum filter
func Erode(img *image.Gray, k int) (*image.Gray, error) {
	return morph("erode", img, k, func(src gocv.Mat, dst *gocv.Mat, kernel gocv.Mat) {
		gocv.Erode(src, dst, kernel)
	})
}

// Dilate applies a k x k maximum filter
func Dilate(img *image.Gray, k int) (*image.Gray, error) {
	return morph("dilate", img, k, func(src gocv.Mat, dst *gocv.Mat, kernel gocv.Mat) {
		gocv.Dilate(src, dst, kernel)
	})
}

func morph(name string, img *image.Gray, k int, op morphOp) (*image.Gray, error) {
	if k < 1 {
		return nil, perrors.New(perrors.InvalidKernelSize, name, "kernel size %d", k)
	}

	src, err := grayMat(img)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(k, k))
	defer kernel.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	op(src, &dst, kernel)

	return matToGray(dst), nil
}
