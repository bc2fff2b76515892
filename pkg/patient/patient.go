// Package patient extracts patient identity from slice metadata.
package patient

import (
	"strings"

	"dicomslicesto3d/internal/models"
)

// Defaults substituted for fields that are missing or unreadable
const (
	DefaultName = "Anonymous"
	DefaultAge  = "Unknown"
	DefaultID   = "UnknownID"
)

// Info is the plain-text identity of a patient
type Info struct {
	Name string
	Age  string
	ID   string
}

// Extract resolves each identity field independently; a bad field never
// suppresses the others.
func Extract(md models.Metadata) Info {
	return Info{
		Name: resolveName(md.PatientName),
		Age:  resolve(md.PatientAge, DefaultAge),
		ID:   resolve(md.PatientID, DefaultID),
	}
}

func resolveName(n *models.PatientName) string {
	if n == nil {
		return DefaultName
	}
	s := n.String()
	return resolve(&s, DefaultName)
}

func resolve(v *string, def string) string {
	if v == nil {
		return def
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return def
	}
	return s
}

// ApplyOverrides replaces the fields for which a non-blank override is given
func ApplyOverrides(info Info, name, age, id string) Info {
	if s := strings.TrimSpace(name); s != "" {
		info.Name = s
	}
	if s := strings.TrimSpace(age); s != "" {
		info.Age = s
	}
	if s := strings.TrimSpace(id); s != "" {
		info.ID = s
	}
	return info
}

// NewPatient builds a patient sharing vol. The volume is referenced, not copied.
func NewPatient(info Info, vol *models.Volume) *models.Patient {
	return &models.Patient{
		Name:   info.Name,
		Age:    info.Age,
		ID:     info.ID,
		Volume: vol,
	}
}
