// Package session holds the named collections of an interactive run and the
// operations that fill and consume them: reconstructing DICOM sets,
// registering patients and images, translating slices and running the 2D
// image chain.
package session

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"dicomslicesto3d/internal/models"
	"dicomslicesto3d/pkg/config"
	perrors "dicomslicesto3d/pkg/errors"
	"dicomslicesto3d/pkg/imaging"
	"dicomslicesto3d/pkg/loader"
	"dicomslicesto3d/pkg/output"
	"dicomslicesto3d/pkg/patient"
	"dicomslicesto3d/pkg/reconstruction"
	"dicomslicesto3d/pkg/transform"
	"dicomslicesto3d/pkg/visualization"
)

// DicomSet is a reconstructed directory of slices
type DicomSet struct {
	// ID identifies this reconstruction run
	ID string

	// Dir is the source directory
	Dir string

	// Slices are the decoded slices in volume order
	Slices []*models.Slice

	// Filenames lists the source file of each depth index
	Filenames []string

	Volume *models.Volume

	// FellBack is true when the input order was kept because a location was missing
	FellBack bool

	Skipped []loader.Skipped

	Stats reconstruction.VolumeStats
}

// EntryKind tells what an image registry entry refers to
type EntryKind int

const (
	// Standalone is a 2D picture read from an image file
	Standalone EntryKind = iota
	// Dicom references a reconstructed set
	Dicom
)

func (k EntryKind) String() string {
	if k == Dicom {
		return "dicom"
	}
	return "standalone"
}

// ImageEntry is one item of the image registry
type ImageEntry struct {
	Kind EntryKind

	// Image is set for standalone entries
	Image image.Image

	// Set is set for dicom entries
	Set *DicomSet

	Path string
}

// Overrides replace extracted patient fields when non-blank
type Overrides struct {
	Name string
	Age  string
	ID   string
}

// TranslationResult is the outcome of TranslateDicom
type TranslationResult struct {
	Original   *models.Plane
	Translated *models.Plane

	// Path is where the translated slice was written and ComparisonPath where
	// the side-by-side montage went; both are empty when saving is off
	Path           string
	ComparisonPath string
}

// ProcessResult is the outcome of ProcessImage. Path holds the annotated
// image; ComparisonPath the montage of every stage.
type ProcessResult struct {
	Stages         *imaging.Stages
	Path           string
	ComparisonPath string
}

// OrthogonalResult is the outcome of Orthogonal
type OrthogonalResult struct {
	Views *visualization.OrthogonalViews
	Path  string
}

// Session owns the DICOM set, patient and image registries
type Session struct {
	sets     *Registry[*DicomSet]
	patients *Registry[*models.Patient]
	images   *Registry[*ImageEntry]

	cfg     *config.Config
	decoder loader.Decoder
	writer  *output.Writer
	logger  *slog.Logger
}

// New creates a session with empty registries. A nil cfg means
// config.DefaultConfig, a nil decoder means the DICOM decoder and a nil
// logger discards output.
func New(cfg *config.Config, decoder loader.Decoder, logger *slog.Logger) *Session {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if decoder == nil {
		decoder = loader.NewDicomDecoder()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{
		sets:     NewRegistry[*DicomSet]("dicom-sets"),
		patients: NewRegistry[*models.Patient]("patients"),
		images:   NewRegistry[*ImageEntry]("images"),
		cfg:      cfg,
		decoder:  decoder,
		writer:   output.NewWriter(cfg.Output.Dir),
		logger:   logger,
	}
}

func (s *Session) Sets() *Registry[*DicomSet] { return s.sets }

func (s *Session) Patients() *Registry[*models.Patient] { return s.patients }

func (s *Session) Images() *Registry[*ImageEntry] { return s.images }

func (s *Session) Config() *config.Config { return s.cfg }

// ProcessDicomDir reconstructs the slices of dir and stores the result under key
func (s *Session) ProcessDicomDir(dir, key string) (*DicomSet, error) {
	r := reconstruction.NewReconstructor(&reconstruction.Params{
		InputDir: dir,
		Pattern:  s.cfg.Loader.Pattern,
	}, s.decoder, s.logger)

	res, err := r.Process()
	if err != nil {
		return nil, err
	}

	set := &DicomSet{
		ID:        uuid.New().String(),
		Dir:       dir,
		Slices:    res.Volume.Slices,
		Filenames: res.Filenames,
		Volume:    res.Volume,
		FellBack:  res.FellBack,
		Skipped:   res.Skipped,
		Stats:     res.Stats,
	}
	s.sets.Put(key, set)

	s.logger.Info("DICOM set registered", "key", key, "id", set.ID,
		"depth", set.Volume.Depth, "fellBack", set.FellBack)
	return set, nil
}

// RegisterPatient builds a patient from the first slice of the set under
// dicomKey and stores it under patientKey. The set is also entered in the
// image registry under dicomKey.
func (s *Session) RegisterPatient(dicomKey, patientKey string, o Overrides) (*models.Patient, error) {
	set, err := s.sets.Get(dicomKey)
	if err != nil {
		return nil, err
	}

	info := patient.Extract(set.Slices[0].Metadata)
	info = patient.ApplyOverrides(info, o.Name, o.Age, o.ID)
	p := patient.NewPatient(info, set.Volume)

	s.patients.Put(patientKey, p)
	s.images.Put(dicomKey, &ImageEntry{Kind: Dicom, Set: set, Path: set.Dir})

	s.logger.Info("Patient registered", "key", patientKey, "name", p.Name, "age", p.Age, "id", p.ID)
	return p, nil
}

// AddImage decodes a PNG or JPEG file and stores it under key
func (s *Session) AddImage(path, key string) (*ImageEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, perrors.Wrap(perrors.DecodeError, "session.add-image", fmt.Errorf("%s: %w", path, err))
	}

	entry := &ImageEntry{Kind: Standalone, Image: img, Path: path}
	s.images.Put(key, entry)

	b := img.Bounds()
	s.logger.Info("Image registered", "key", key, "format", format, "width", b.Dx(), "height", b.Dy())
	return entry, nil
}

// TranslateDicom shifts the central axial slice of the set under key by
// (tx, ty) pixels.
func (s *Session) TranslateDicom(key string, tx, ty int) (*TranslationResult, error) {
	set, err := s.sets.Get(key)
	if err != nil {
		return nil, err
	}

	original, err := visualization.NewViewer(set.Volume).ExtractSlice(visualization.Axial, set.Volume.Depth/2)
	if err != nil {
		return nil, err
	}
	res := &TranslationResult{
		Original:   original,
		Translated: transform.Translate(original, tx, ty),
	}

	if s.cfg.Output.Save {
		name := output.TranslatedName(key, tx, ty)
		if res.Path, err = s.writer.Save(res.Translated.ToGray(), name); err != nil {
			return nil, err
		}
		montage := visualization.RenderMontage("", []visualization.Panel{
			visualization.PlanePanel("Original", res.Original),
			visualization.PlanePanel(fmt.Sprintf("Translated (X=%d, Y=%d)", tx, ty), res.Translated),
		})
		if res.ComparisonPath, err = s.writer.Save(montage, output.ComparisonName(name)); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Slice translated", "key", key, "tx", tx, "ty", ty, "path", res.Path, "comparison", res.ComparisonPath)
	return res, nil
}

// ProcessImage runs binarization, opening and annotation on the standalone
// image under key. DICOM entries are rejected like missing keys.
func (s *Session) ProcessImage(key string, p imaging.Params) (*ProcessResult, error) {
	entry, err := s.images.Get(key)
	if err != nil {
		return nil, err
	}
	if entry.Kind != Standalone {
		return nil, perrors.New(perrors.UnknownKey, "session.process-image", "%q is not a standalone image", key)
	}

	stages, err := imaging.Process(entry.Image, p)
	if err != nil {
		return nil, err
	}
	res := &ProcessResult{Stages: stages}

	if s.cfg.Output.Save {
		name := output.ProcessedName(key, p.Variant.String(), p.Shape.String())
		if res.Path, err = s.writer.Save(stages.Annotated, name); err != nil {
			return nil, err
		}
		montage := visualization.RenderMontage("", []visualization.Panel{
			{Title: "Original", Image: entry.Image},
			{Title: fmt.Sprintf("Binarized (%s)", p.Variant), Image: stages.Binarized},
			{Title: fmt.Sprintf("Opening (Kernel %dx%d)", p.KernelSize, p.KernelSize), Image: stages.Opened},
			{Title: fmt.Sprintf("Result (%s)", p.Shape), Image: stages.Annotated},
		})
		if res.ComparisonPath, err = s.writer.Save(montage, output.ComparisonName(name)); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Image processed", "key", key, "variant", p.Variant, "threshold", p.Threshold,
		"kernel", p.KernelSize, "shape", p.Shape, "path", res.Path)
	return res, nil
}

// Orthogonal extracts the three cross-sections of the set under key. When a
// patient shares the set's volume its description heads the saved montage.
func (s *Session) Orthogonal(key string, idx visualization.Indices) (*OrthogonalResult, error) {
	set, err := s.sets.Get(key)
	if err != nil {
		return nil, err
	}

	views, err := visualization.NewViewer(set.Volume).Orthogonal(idx)
	if err != nil {
		return nil, err
	}
	res := &OrthogonalResult{Views: views}

	if s.cfg.Output.Save {
		montage := visualization.RenderMontage(s.headingFor(set), views.Panels())
		if res.Path, err = s.writer.Save(montage, output.OrthogonalName(key)); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Orthogonal views extracted", "key", key,
		"depth", views.DepthIndex, "row", views.RowIndex, "col", views.ColIndex, "path", res.Path)
	return res, nil
}

func (s *Session) headingFor(set *DicomSet) string {
	for _, k := range s.patients.Keys() {
		p, err := s.patients.Get(k)
		if err == nil && p.Volume == set.Volume {
			return p.String()
		}
	}
	return ""
}
