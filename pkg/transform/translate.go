// Package transform applies geometric transforms to single planes.
package transform

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"dicomslicesto3d/internal/models"
)

// TranslationMatrix returns the 3x3 homogeneous matrix moving content by (tx, ty)
func TranslationMatrix(tx, ty int) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		1, 0, float64(tx),
		0, 1, float64(ty),
		0, 0, 1,
	})
}

// Warp maps every output pixel through the inverse of the affine matrix m and
// samples the nearest source pixel. Output dimensions equal the input's;
// source coordinates outside the plane produce zero.
func Warp(src *models.Plane, m mat.Matrix) (*models.Plane, error) {
	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		return nil, fmt.Errorf("affine matrix is not invertible: %w", err)
	}

	dst := models.NewPlane(src.Width, src.Height)
	pt := mat.NewVecDense(3, nil)
	var srcPt mat.VecDense

	for y := 0; y < dst.Height; y++ {
		for x := 0; x < dst.Width; x++ {
			pt.SetVec(0, float64(x))
			pt.SetVec(1, float64(y))
			pt.SetVec(2, 1)
			srcPt.MulVec(&inv, pt)

			sx := int(math.Round(srcPt.AtVec(0)))
			sy := int(math.Round(srcPt.AtVec(1)))
			if sx < 0 || sy < 0 || sx >= src.Width || sy >= src.Height {
				continue
			}
			dst.Set(x, y, src.At(sx, sy))
		}
	}

	return dst, nil
}

// Translate shifts the plane by (tx, ty): out[y, x] = in[y-ty, x-tx] where the
// source is in bounds, zero elsewhere. Content moved past the border is lost.
func Translate(src *models.Plane, tx, ty int) *models.Plane {
	dst, err := Warp(src, TranslationMatrix(tx, ty))
	if err != nil {
		// A pure translation always has an inverse
		panic(err)
	}
	return dst
}
