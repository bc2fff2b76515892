// Package imaging implements the 2D processing chain on OpenCV matrices:
// grayscale conversion, thresholding, morphological opening and annotation.
package imaging

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
	"golang.org/x/image/draw"
)

// ToGray converts img to 8-bit grayscale with OpenCV's RGBA to gray
// conversion. Gray images are copied as-is.
func ToGray(img image.Image) (*image.Gray, error) {
	mat, err := grayMat(img)
	if err != nil {
		return nil, err
	}
	defer mat.Close()
	return matToGray(mat), nil
}

// grayMat copies img into a single-channel 8-bit Mat
func grayMat(img image.Image) (gocv.Mat, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	if g, ok := img.(*image.Gray); ok {
		tight := image.NewGray(image.Rect(0, 0, w, h))
		draw.Draw(tight, tight.Bounds(), g, b.Min, draw.Src)
		mat, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC1, tight.Pix)
		if err != nil {
			return gocv.Mat{}, fmt.Errorf("failed to create gray mat: %w", err)
		}
		defer mat.Close()
		return mat.Clone(), nil
	}

	rgba, err := rgbaMat(img)
	if err != nil {
		return gocv.Mat{}, err
	}
	defer rgba.Close()

	gray := gocv.NewMat()
	gocv.CvtColor(rgba, &gray, gocv.ColorRGBAToGray)
	return gray, nil
}

// bgrMat copies img into a three-channel BGR Mat, the layout OpenCV draws on
func bgrMat(img image.Image) (gocv.Mat, error) {
	if g, ok := img.(*image.Gray); ok {
		gray, err := grayMat(g)
		if err != nil {
			return gocv.Mat{}, err
		}
		defer gray.Close()

		bgr := gocv.NewMat()
		gocv.CvtColor(gray, &bgr, gocv.ColorGrayToBGR)
		return bgr, nil
	}

	rgba, err := rgbaMat(img)
	if err != nil {
		return gocv.Mat{}, err
	}
	defer rgba.Close()

	bgr := gocv.NewMat()
	gocv.CvtColor(rgba, &bgr, gocv.ColorRGBAToBGR)
	return bgr, nil
}

// rgbaMat copies img into a four-channel RGBA Mat with its origin at (0, 0)
func rgbaMat(img image.Image) (gocv.Mat, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	mat, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC4, rgba.Pix)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to create rgba mat: %w", err)
	}
	defer mat.Close()
	return mat.Clone(), nil
}

// matToGray copies a single-channel 8-bit Mat into a gray image
func matToGray(mat gocv.Mat) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, mat.Cols(), mat.Rows()))
	copy(out.Pix, mat.ToBytes())
	return out
}

// matToRGBA copies a BGR Mat into an opaque RGBA image
func matToRGBA(mat gocv.Mat) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, mat.Cols(), mat.Rows()))
	data := mat.ToBytes()
	for i, j := 0, 0; i+2 < len(data) && j+3 < len(out.Pix); i, j = i+3, j+4 {
		out.Pix[j] = data[i+2]
		out.Pix[j+1] = data[i+1]
		out.Pix[j+2] = data[i]
		out.Pix[j+3] = 0xff
	}
	return out
}
