package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"

	"dicomslicesto3d/internal/models"
)

func mustNewElement(t *testing.T, tg tag.Tag, data interface{}) *dicom.Element {
	t.Helper()
	elem, err := dicom.NewElement(tg, data)
	require.NoError(t, err)
	return elem
}

func TestMetadataFromDataset(t *testing.T) {
	ds := dicom.Dataset{Elements: []*dicom.Element{
		mustNewElement(t, tag.PatientName, []string{"Doe^John"}),
		mustNewElement(t, tag.PatientAge, []string{"045Y"}),
		mustNewElement(t, tag.PatientID, []string{"P-001"}),
		mustNewElement(t, tag.SliceLocation, []string{" -12.5 "}),
	}}

	md := metadataFromDataset(ds)

	require.NotNil(t, md.PatientName)
	assert.Equal(t, models.NameStructured, md.PatientName.Kind)
	assert.Equal(t, "Doe John", md.PatientName.String())
	require.NotNil(t, md.PatientAge)
	assert.Equal(t, "045Y", *md.PatientAge)
	require.NotNil(t, md.PatientID)
	assert.Equal(t, "P-001", *md.PatientID)
	require.NotNil(t, md.SliceLocation)
	assert.Equal(t, -12.5, *md.SliceLocation)
}

func TestMetadataFromDatasetMissingFields(t *testing.T) {
	ds := dicom.Dataset{Elements: []*dicom.Element{
		mustNewElement(t, tag.PatientName, []string{"Jane Roe"}),
		mustNewElement(t, tag.SliceLocation, []string{"n/a"}),
	}}

	md := metadataFromDataset(ds)

	require.NotNil(t, md.PatientName)
	assert.Equal(t, models.NamePlain, md.PatientName.Kind)
	assert.Equal(t, "Jane Roe", md.PatientName.String())
	assert.Nil(t, md.PatientAge)
	assert.Nil(t, md.PatientID)
	assert.Nil(t, md.SliceLocation)
}

func TestParsePersonName(t *testing.T) {
	tests := []struct {
		in   string
		want models.PatientName
	}{
		{"Smith^Anna", models.StructuredName("Smith", "Anna")},
		{"Smith^Anna^B^Dr", models.StructuredName("Smith", "Anna")},
		{"Smith^", models.StructuredName("Smith", "")},
		{"Anna Smith", models.PlainName("Anna Smith")},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parsePersonName(tt.in))
		})
	}
}

func TestSliceFromDataset(t *testing.T) {
	const rows, cols = 2, 3
	nativeFrame := frame.NewNativeFrame[uint16](16, rows, cols, rows*cols, 1)
	for i := range nativeFrame.RawData {
		nativeFrame.RawData[i] = uint16(i * 100)
	}

	ds := dicom.Dataset{Elements: []*dicom.Element{
		mustNewElement(t, tag.Rows, []int{rows}),
		mustNewElement(t, tag.Columns, []int{cols}),
		mustNewElement(t, tag.PixelData, dicom.PixelDataInfo{
			Frames: []*frame.Frame{{Encapsulated: false, NativeData: nativeFrame}},
		}),
	}}

	slice, err := sliceFromDataset(ds)
	require.NoError(t, err)

	assert.Equal(t, cols, slice.Plane.Width)
	assert.Equal(t, rows, slice.Plane.Height)
	assert.Equal(t, 0.0, slice.Plane.At(0, 0))
	assert.Equal(t, 500.0, slice.Plane.At(2, 1))
}

func TestSliceFromDatasetSignedPixels(t *testing.T) {
	signedFrame := frame.NewNativeFrame[int16](16, 1, 2, 2, 1)
	signedFrame.RawData[0] = -1000
	signedFrame.RawData[1] = 40

	wrapped := frame.NewNativeFrame[uint16](16, 1, 2, 2, 1)
	wrapped.RawData[0] = 64536
	wrapped.RawData[1] = 40

	tests := []struct {
		name  string
		frame frame.INativeFrame
	}{
		{"int16 samples", signedFrame},
		{"uint16 samples", wrapped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := dicom.Dataset{Elements: []*dicom.Element{
				mustNewElement(t, tag.Rows, []int{1}),
				mustNewElement(t, tag.Columns, []int{2}),
				mustNewElement(t, tag.BitsStored, []int{16}),
				mustNewElement(t, tag.PixelRepresentation, []int{1}),
				mustNewElement(t, tag.PixelData, dicom.PixelDataInfo{
					Frames: []*frame.Frame{{Encapsulated: false, NativeData: tt.frame}},
				}),
			}}

			slice, err := sliceFromDataset(ds)
			require.NoError(t, err)
			assert.Equal(t, -1000.0, slice.Plane.At(0, 0))
			assert.Equal(t, 40.0, slice.Plane.At(1, 0))
		})
	}
}

func TestToSigned(t *testing.T) {
	assert.Equal(t, -1000, toSigned(64536, 16))
	assert.Equal(t, 40, toSigned(40, 16))
	assert.Equal(t, -1, toSigned(0xfff, 12))
	assert.Equal(t, 2047, toSigned(2047, 12))
	assert.Equal(t, -5, toSigned(-5, 16))
}

func TestMetadataFromDatasetNonFiniteLocation(t *testing.T) {
	for _, loc := range []string{"NaN", "Inf", "-Inf"} {
		t.Run(loc, func(t *testing.T) {
			ds := dicom.Dataset{Elements: []*dicom.Element{
				mustNewElement(t, tag.SliceLocation, []string{loc}),
			}}
			assert.Nil(t, metadataFromDataset(ds).SliceLocation)
		})
	}
}

func TestDicomDecoderRoundTrip(t *testing.T) {
	const rows, cols = 3, 4
	nativeFrame := frame.NewNativeFrame[uint16](16, rows, cols, rows*cols, 1)
	for i := range nativeFrame.RawData {
		nativeFrame.RawData[i] = uint16(i * 10)
	}

	ds := dicom.Dataset{Elements: []*dicom.Element{
		mustNewElement(t, tag.TransferSyntaxUID, []string{"1.2.840.10008.1.2.1"}),
		mustNewElement(t, tag.SOPClassUID, []string{"1.2.840.10008.5.1.4.1.1.4"}),
		mustNewElement(t, tag.SOPInstanceUID, []string{"1.2.3.4.5.6.7"}),
		mustNewElement(t, tag.PatientName, []string{"Doe^Jane"}),
		mustNewElement(t, tag.PatientID, []string{"P-42"}),
		mustNewElement(t, tag.SliceLocation, []string{"-7.500000"}),
		mustNewElement(t, tag.Rows, []int{rows}),
		mustNewElement(t, tag.Columns, []int{cols}),
		mustNewElement(t, tag.BitsAllocated, []int{16}),
		mustNewElement(t, tag.BitsStored, []int{16}),
		mustNewElement(t, tag.HighBit, []int{15}),
		mustNewElement(t, tag.PixelRepresentation, []int{0}),
		mustNewElement(t, tag.SamplesPerPixel, []int{1}),
		mustNewElement(t, tag.PhotometricInterpretation, []string{"MONOCHROME2"}),
		mustNewElement(t, tag.PixelData, dicom.PixelDataInfo{
			Frames: []*frame.Frame{{Encapsulated: false, NativeData: nativeFrame}},
		}),
	}}

	path := filepath.Join(t.TempDir(), "slice.dcm")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, dicom.Write(f, ds))
	require.NoError(t, f.Close())

	slice, err := NewDicomDecoder().Decode(path)
	require.NoError(t, err)

	assert.Equal(t, cols, slice.Plane.Width)
	assert.Equal(t, rows, slice.Plane.Height)
	assert.Equal(t, 0.0, slice.Plane.At(0, 0))
	assert.Equal(t, 60.0, slice.Plane.At(2, 1))
	assert.Equal(t, 110.0, slice.Plane.At(3, 2))
	require.NotNil(t, slice.Metadata.PatientName)
	assert.Equal(t, "Doe Jane", slice.Metadata.PatientName.String())
	require.NotNil(t, slice.Metadata.PatientID)
	assert.Equal(t, "P-42", *slice.Metadata.PatientID)
	require.NotNil(t, slice.Metadata.SliceLocation)
	assert.Equal(t, -7.5, *slice.Metadata.SliceLocation)
}

func TestSliceFromDatasetWithoutPixelData(t *testing.T) {
	ds := dicom.Dataset{Elements: []*dicom.Element{
		mustNewElement(t, tag.PatientID, []string{"P-001"}),
	}}

	_, err := sliceFromDataset(ds)
	assert.Error(t, err)
}

func TestDicomDecoderRejectsNonDicom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.dcm")
	require.NoError(t, os.WriteFile(path, []byte("not a dicom file"), 0644))

	_, err := NewDicomDecoder().Decode(path)
	assert.Error(t, err)
}
