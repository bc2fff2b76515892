package imaging

import (
	"image"
	"strings"

	"gocv.io/x/gocv"

	perrors "dicomslicesto3d/pkg/errors"
)

// MaxValue is the output ceiling of every threshold variant
const MaxValue = 255

// Variant is a pixel-wise thresholding rule
type Variant int

const (
	Binary Variant = iota + 1
	BinaryInverted
	Truncate
	ToZero
	ToZeroInverted
)

var variantNames = map[Variant]string{
	Binary:         "binary",
	BinaryInverted: "binary-inverted",
	Truncate:       "truncate",
	ToZero:         "to-zero",
	ToZeroInverted: "to-zero-inverted",
}

// Variants lists every variant in menu order
func Variants() []Variant {
	return []Variant{Binary, BinaryInverted, Truncate, ToZero, ToZeroInverted}
}

func (v Variant) String() string {
	if name, ok := variantNames[v]; ok {
		return name
	}
	return "invalid"
}

// ParseVariant accepts a variant name or its menu number "1".."5"
func ParseVariant(s string) (Variant, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, v := range Variants() {
		if s == v.String() || (len(s) == 1 && s[0] == byte('0'+int(v))) {
			return v, nil
		}
	}
	return 0, perrors.New(perrors.InvalidVariant, "parse variant", "%q", s)
}

// thresholdType maps the variant to its OpenCV rule
func (v Variant) thresholdType() gocv.ThresholdType {
	switch v {
	case BinaryInverted:
		return gocv.ThresholdBinaryInv
	case Truncate:
		return gocv.ThresholdTrunc
	case ToZero:
		return gocv.ThresholdToZero
	case ToZeroInverted:
		return gocv.ThresholdToZeroInv
	default:
		return gocv.ThresholdBinary
	}
}

// Binarize converts img to grayscale and applies the variant with the given
// threshold, which must lie in [0, 255]. Pixels strictly above the threshold
// count as bright.
func Binarize(img image.Image, v Variant, threshold int) (*image.Gray, error) {
	if _, ok := variantNames[v]; !ok {
		return nil, perrors.New(perrors.InvalidVariant, "binarize", "variant %d", int(v))
	}
	if threshold < 0 || threshold > MaxValue {
		return nil, perrors.New(perrors.InvalidThreshold, "binarize", "threshold %d outside [0, 255]", threshold)
	}

	gray, err := grayMat(img)
	if err != nil {
		return nil, err
	}
	defer gray.Close()

	out := gocv.NewMat()
	defer out.Close()
	gocv.Threshold(gray, &out, float32(threshold), MaxValue, v.thresholdType())

	return matToGray(out), nil
}
