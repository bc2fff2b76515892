package loader

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"dicomslicesto3d/internal/models"
)

// DicomDecoder decodes single-frame DICOM files
type DicomDecoder struct{}

// NewDicomDecoder creates a DICOM slice decoder
func NewDicomDecoder() *DicomDecoder {
	return &DicomDecoder{}
}

// Decode parses the file at path and returns its first frame and metadata
func (d *DicomDecoder) Decode(path string) (*models.Slice, error) {
	ds, err := dicom.ParseFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dicom: %w", err)
	}
	return sliceFromDataset(ds)
}

// sliceFromDataset builds a slice from a parsed dataset
func sliceFromDataset(ds dicom.Dataset) (*models.Slice, error) {
	plane, err := planeFromDataset(ds)
	if err != nil {
		return nil, err
	}
	return &models.Slice{
		Plane:    plane,
		Metadata: metadataFromDataset(ds),
	}, nil
}

func planeFromDataset(ds dicom.Dataset) (*models.Plane, error) {
	elem, err := ds.FindElementByTag(tag.PixelData)
	if err != nil {
		return nil, fmt.Errorf("no pixel data: %w", err)
	}

	info, ok := elem.Value.GetValue().(dicom.PixelDataInfo)
	if !ok {
		return nil, fmt.Errorf("unexpected pixel data value type %T", elem.Value.GetValue())
	}
	if len(info.Frames) == 0 {
		return nil, fmt.Errorf("pixel data holds no frames")
	}

	f := info.Frames[0]
	if f.Encapsulated {
		img, err := f.GetImage()
		if err != nil {
			return nil, fmt.Errorf("failed to read frame: %w", err)
		}
		return models.PlaneFromImage(img), nil
	}

	nf, err := f.GetNativeFrame()
	if err != nil {
		return nil, fmt.Errorf("failed to read frame: %w", err)
	}

	bits := nf.BitsPerSample()
	if stored, ok := firstInt(ds, tag.BitsStored); ok && stored > 0 && stored < bits {
		bits = stored
	}
	pr, _ := firstInt(ds, tag.PixelRepresentation)
	signed := pr == 1

	p := models.NewPlane(nf.Cols(), nf.Rows())
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			px, err := nf.GetPixel(x, y)
			if err != nil {
				return nil, fmt.Errorf("failed to read pixel (%d,%d): %w", x, y, err)
			}
			v := px[0]
			if signed {
				v = toSigned(v, bits)
			}
			p.Set(x, y, float64(v))
		}
	}
	return p, nil
}

// toSigned reinterprets an unsigned sample of the given bit depth as two's
// complement. Values that are already negative are returned unchanged.
func toSigned(v, bits int) int {
	if v < 0 || bits <= 0 || bits >= 32 {
		return v
	}
	v &= 1<<bits - 1
	if v >= 1<<(bits-1) {
		v -= 1 << bits
	}
	return v
}

// metadataFromDataset resolves each field on its own; a field that is absent
// or unreadable stays nil without affecting the others.
func metadataFromDataset(ds dicom.Dataset) models.Metadata {
	var md models.Metadata

	if s, ok := firstString(ds, tag.PatientName); ok {
		name := parsePersonName(s)
		md.PatientName = &name
	}
	if s, ok := firstString(ds, tag.PatientAge); ok {
		md.PatientAge = &s
	}
	if s, ok := firstString(ds, tag.PatientID); ok {
		md.PatientID = &s
	}
	if s, ok := firstString(ds, tag.SliceLocation); ok {
		if loc, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsNaN(loc) && !math.IsInf(loc, 0) {
			md.SliceLocation = &loc
		}
	}

	return md
}

// firstString returns the first non-blank string value of the element with tag t
func firstString(ds dicom.Dataset, t tag.Tag) (string, bool) {
	elem, err := ds.FindElementByTag(t)
	if err != nil || elem.Value == nil {
		return "", false
	}
	strs, ok := elem.Value.GetValue().([]string)
	if !ok || len(strs) == 0 {
		return "", false
	}
	s := strings.TrimRight(strs[0], " \x00")
	if strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// firstInt returns the first integer value of the element with tag t
func firstInt(ds dicom.Dataset, t tag.Tag) (int, bool) {
	elem, err := ds.FindElementByTag(t)
	if err != nil || elem.Value == nil {
		return 0, false
	}
	ints, ok := elem.Value.GetValue().([]int)
	if !ok || len(ints) == 0 {
		return 0, false
	}
	return ints[0], true
}

// parsePersonName splits a PN value on its component separator. Values
// without a separator are kept as plain text.
func parsePersonName(s string) models.PatientName {
	if !strings.Contains(s, "^") {
		return models.PlainName(s)
	}
	parts := strings.Split(s, "^")
	given := ""
	if len(parts) > 1 {
		given = parts[1]
	}
	return models.StructuredName(parts[0], given)
}
