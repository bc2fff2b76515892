package reconstruction

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dicomslicesto3d/internal/models"
	perrors "dicomslicesto3d/pkg/errors"
)

// createTestSlice creates a slice filled with a constant value and an optional location
func createTestSlice(name string, width, height int, fill float64, loc *float64) *models.Slice {
	p := models.NewPlane(width, height)
	for i := range p.Pix {
		p.Pix[i] = fill
	}
	return &models.Slice{
		Plane:    p,
		Metadata: models.Metadata{Filename: name, SliceLocation: loc},
	}
}

func loc(v float64) *float64 {
	return &v
}

func filenames(slices []*models.Slice) []string {
	out := make([]string, len(slices))
	for i, s := range slices {
		out[i] = s.Metadata.Filename
	}
	return out
}

func TestOrderSlicesByLocation(t *testing.T) {
	input := []*models.Slice{
		createTestSlice("a", 2, 2, 0, loc(3)),
		createTestSlice("b", 2, 2, 0, loc(-1)),
		createTestSlice("c", 2, 2, 0, loc(2.5)),
	}

	ordered, fellBack := OrderSlices(input, nil)

	assert.False(t, fellBack)
	assert.Equal(t, []string{"b", "c", "a"}, filenames(ordered))
	assert.Equal(t, []string{"a", "b", "c"}, filenames(input), "input must not be reordered")
}

func TestOrderSlicesStableForEqualLocations(t *testing.T) {
	input := []*models.Slice{
		createTestSlice("first", 2, 2, 0, loc(1)),
		createTestSlice("second", 2, 2, 0, loc(0)),
		createTestSlice("third", 2, 2, 0, loc(1)),
		createTestSlice("fourth", 2, 2, 0, loc(1)),
	}

	ordered, _ := OrderSlices(input, nil)

	assert.Equal(t, []string{"second", "first", "third", "fourth"}, filenames(ordered))
}

func TestOrderSlicesFallbackKeepsInputOrder(t *testing.T) {
	input := []*models.Slice{
		createTestSlice("a", 2, 2, 0, loc(5)),
		createTestSlice("b", 2, 2, 0, loc(1)),
		createTestSlice("c", 2, 2, 0, nil),
		createTestSlice("d", 2, 2, 0, loc(3)),
	}

	ordered, fellBack := OrderSlices(input, nil)

	assert.True(t, fellBack)
	assert.Equal(t, []string{"a", "b", "c", "d"}, filenames(ordered))
}

func TestAssemble(t *testing.T) {
	input := []*models.Slice{
		createTestSlice("a", 4, 3, 1, nil),
		createTestSlice("b", 4, 3, 2, nil),
	}

	vol, err := Assemble(input)
	require.NoError(t, err)

	assert.Equal(t, 2, vol.Depth)
	assert.Equal(t, 3, vol.Height)
	assert.Equal(t, 4, vol.Width)
	assert.Len(t, vol.Data, 24)
	assert.Equal(t, 1.0, vol.At(0, 2, 3))
	assert.Equal(t, 2.0, vol.At(1, 0, 0))
}

func TestAssembleDimensionMismatch(t *testing.T) {
	input := []*models.Slice{
		createTestSlice("big", 512, 512, 0, nil),
		createTestSlice("small", 256, 256, 0, nil),
	}

	vol, err := Assemble(input)

	assert.Nil(t, vol)
	assert.True(t, errors.Is(err, perrors.ErrDimensionMismatch))
	assert.Contains(t, err.Error(), "small")
}

func TestAssembleEmptyInput(t *testing.T) {
	vol, err := Assemble(nil)

	assert.Nil(t, vol)
	assert.True(t, errors.Is(err, perrors.ErrEmptyInput))
	assert.False(t, errors.Is(err, perrors.ErrDimensionMismatch))
}

func TestComputeStats(t *testing.T) {
	vol := &models.Volume{Data: []float64{1, 2, 3, 4}, Width: 2, Height: 1, Depth: 2}

	stats := ComputeStats(vol)

	assert.InDelta(t, 2.5, stats.Mean, 1e-9)
	assert.InDelta(t, 1.2909944, stats.StdDev, 1e-6)
	assert.Equal(t, 1.0, stats.Min)
	assert.Equal(t, 4.0, stats.Max)

	single := ComputeStats(&models.Volume{Data: []float64{7}, Width: 1, Height: 1, Depth: 1})
	assert.Equal(t, 0.0, single.StdDev)
	assert.Equal(t, VolumeStats{}, ComputeStats(nil))
}

// textDecoder reads "<width>x<height>;<fill>;<location>" files; an empty
// location field leaves the slice without one.
type textDecoder struct{}

func (textDecoder) Decode(path string) (*models.Slice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fields := strings.Split(string(data), ";")
	if len(fields) != 3 {
		return nil, fmt.Errorf("malformed test slice")
	}
	var w, h int
	if _, err := fmt.Sscanf(fields[0], "%dx%d", &w, &h); err != nil {
		return nil, err
	}
	fill, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return nil, err
	}
	var l *float64
	if fields[2] != "" {
		v, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, err
		}
		l = &v
	}
	return createTestSlice("", w, h, fill, l), nil
}

// createTestSlices writes slice files to dir
func createTestSlices(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
}

func TestProcessEndToEnd(t *testing.T) {
	dir := t.TempDir()
	createTestSlices(t, dir, map[string]string{
		"s1.dcm":     "64x64;30;3.0",
		"s2.dcm":     "64x64;10;1.0",
		"s3.dcm":     "64x64;20;2.0",
		"s4.dcm":     "64x64;50;5.0",
		"s5.dcm":     "64x64;40;4.0",
		"broken.dcm": "garbage",
		"readme.txt": "64x64;0;0",
	})

	result, err := NewReconstructor(&Params{InputDir: dir}, textDecoder{}, nil).Process()
	require.NoError(t, err)

	vol := result.Volume
	assert.Equal(t, 5, vol.Depth)
	assert.Equal(t, 64, vol.Width)
	assert.Equal(t, 64, vol.Height)
	assert.False(t, result.FellBack)
	assert.Equal(t, []string{"s2.dcm", "s3.dcm", "s1.dcm", "s5.dcm", "s4.dcm"}, result.Filenames)

	// Axial index 0 is the slice that carried location 1.0
	assert.Equal(t, 10.0, vol.At(0, 32, 32))
	assert.Equal(t, 1.0, *vol.Slices[0].Metadata.SliceLocation)

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "broken.dcm", result.Skipped[0].Filename)
	assert.InDelta(t, 30.0, result.Stats.Mean, 1e-9)
}

func TestProcessFallbackOrder(t *testing.T) {
	dir := t.TempDir()
	createTestSlices(t, dir, map[string]string{
		"a.dcm": "8x8;1;9",
		"b.dcm": "8x8;2;",
		"c.dcm": "8x8;3;1",
	})

	result, err := NewReconstructor(&Params{InputDir: dir}, textDecoder{}, nil).Process()
	require.NoError(t, err)

	assert.True(t, result.FellBack)
	assert.Equal(t, []string{"a.dcm", "b.dcm", "c.dcm"}, result.Filenames)
}

func TestProcessErrors(t *testing.T) {
	t.Run("EmptyDirectory", func(t *testing.T) {
		_, err := NewReconstructor(&Params{InputDir: t.TempDir()}, textDecoder{}, nil).Process()
		assert.True(t, errors.Is(err, perrors.ErrEmptyInput))
	})

	t.Run("AllUndecodable", func(t *testing.T) {
		dir := t.TempDir()
		createTestSlices(t, dir, map[string]string{"x.dcm": "nope"})
		_, err := NewReconstructor(&Params{InputDir: dir}, textDecoder{}, nil).Process()
		assert.True(t, errors.Is(err, perrors.ErrEmptyInput))
	})

	t.Run("Mismatch", func(t *testing.T) {
		dir := t.TempDir()
		createTestSlices(t, dir, map[string]string{
			"a.dcm": "16x16;0;1",
			"b.dcm": "8x8;0;2",
		})
		_, err := NewReconstructor(&Params{InputDir: dir}, textDecoder{}, nil).Process()
		assert.Equal(t, perrors.DimensionMismatch, perrors.KindOf(err))
	})

	t.Run("MissingDirectory", func(t *testing.T) {
		_, err := NewReconstructor(&Params{InputDir: filepath.Join(t.TempDir(), "nope")}, textDecoder{}, nil).Process()
		require.Error(t, err)
		assert.Equal(t, perrors.KindUnknown, perrors.KindOf(err))
	})
}
