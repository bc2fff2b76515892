package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"dicomslicesto3d/pkg/imaging"
	"dicomslicesto3d/pkg/session"
	"dicomslicesto3d/pkg/visualization"
)

const banner = "=================================================="

// menu drives a session from line-oriented input
type menu struct {
	s   *session.Session
	in  *bufio.Scanner
	out io.Writer
}

func newMenu(s *session.Session, in io.Reader, out io.Writer) *menu {
	return &menu{s: s, in: bufio.NewScanner(in), out: out}
}

// run shows the menu until the user quits or input ends
func (m *menu) run() {
	for {
		m.showMenu()
		choice, ok := m.ask("Select an option: ")
		if !ok {
			return
		}

		switch strings.ToLower(choice) {
		case "a":
			m.processDicom()
		case "b":
			m.registerPatient()
		case "c":
			m.addImage()
		case "d":
			m.translate()
		case "e":
			m.processImage()
		case "f":
			m.println("Goodbye.")
			return
		default:
			m.println("Invalid option.")
		}
	}
}

func (m *menu) showMenu() {
	m.println("\n" + banner)
	m.println("    MEDICAL IMAGE PROCESSING")
	m.println(banner)
	m.println("a) Process a DICOM directory")
	m.println("b) Register a patient")
	m.println("c) Add a JPG/PNG image")
	m.println("d) Geometric transform (translation)")
	m.println("e) Process a JPG/PNG image")
	m.println("f) Quit")
	m.println(banner)
}

func (m *menu) processDicom() {
	m.println("\n=== PROCESS DICOM DIRECTORY ===")
	dir, ok := m.ask("Directory containing the DICOM files: ")
	if !ok {
		return
	}
	key, ok := m.ask("Key to store this set under: ")
	if !ok {
		return
	}

	set, err := m.s.ProcessDicomDir(dir, key)
	if err != nil {
		m.printf("Error: %v\n", err)
		return
	}

	m.printf("Loaded %d slices (%d skipped)\n", len(set.Slices), len(set.Skipped))
	m.printf("Volume dimensions: %d x %d x %d\n", set.Volume.Depth, set.Volume.Height, set.Volume.Width)
	if set.FellBack {
		m.println("Some slices lack a location; the file order was kept.")
	}
	m.printf("DICOM set stored under key '%s'\n", key)
	m.printf("Set ID: %s\n", set.ID)

	res, err := m.s.Orthogonal(key, visualization.Indices{})
	if err != nil {
		m.printf("Error: %v\n", err)
		return
	}
	if res.Path != "" {
		m.printf("Orthogonal views saved as: %s\n", res.Path)
	}
}

func (m *menu) registerPatient() {
	m.println("\n=== REGISTER PATIENT ===")
	dicomKey, ok := m.pickKey("DICOM sets", m.s.Sets().Keys(), "Process a DICOM directory first (option a).")
	if !ok {
		return
	}

	var o session.Overrides
	if answer, ok := m.ask("Override the extracted information? (y/n): "); ok && strings.EqualFold(answer, "y") {
		o.Name, _ = m.ask("New name (blank keeps current): ")
		o.Age, _ = m.ask("New age (blank keeps current): ")
		o.ID, _ = m.ask("New ID (blank keeps current): ")
	}

	patientKey, ok := m.ask("Key to store the patient under: ")
	if !ok {
		return
	}

	p, err := m.s.RegisterPatient(dicomKey, patientKey, o)
	if err != nil {
		m.printf("Error: %v\n", err)
		return
	}
	m.println(p.String())
	m.printf("Patient stored under key '%s'\n", patientKey)
}

func (m *menu) addImage() {
	m.println("\n=== ADD JPG/PNG IMAGE ===")
	path, ok := m.ask("Image path: ")
	if !ok {
		return
	}
	key, ok := m.ask("Key to store the image under: ")
	if !ok {
		return
	}

	entry, err := m.s.AddImage(path, key)
	if err != nil {
		m.printf("Error: %v\n", err)
		return
	}
	b := entry.Image.Bounds()
	m.printf("Image stored under key '%s' (%dx%d)\n", key, b.Dx(), b.Dy())
}

func (m *menu) translate() {
	m.println("\n=== GEOMETRIC TRANSFORM (TRANSLATION) ===")
	key, ok := m.pickKey("DICOM sets", m.s.Sets().Keys(), "Process a DICOM directory first (option a).")
	if !ok {
		return
	}

	presets := m.s.Config().Translation.Presets
	for i, p := range presets {
		m.printf("%d. Translate X=%d, Y=%d\n", i+1, p.X, p.Y)
	}
	answer, ok := m.ask(fmt.Sprintf("Select a translation (1-%d): ", len(presets)))
	if !ok {
		return
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(presets) {
		m.println("Invalid option.")
		return
	}
	offset := presets[n-1]

	res, err := m.s.TranslateDicom(key, offset.X, offset.Y)
	if err != nil {
		m.printf("Error: %v\n", err)
		return
	}
	if res.Path != "" {
		m.printf("Translated image saved as: %s\n", res.Path)
	}
}

func (m *menu) processImage() {
	m.println("\n=== PROCESS JPG/PNG IMAGE ===")
	var keys []string
	for _, k := range m.s.Images().Keys() {
		if e, err := m.s.Images().Get(k); err == nil && e.Kind == session.Standalone {
			keys = append(keys, k)
		}
	}
	key, ok := m.pickKey("Images", keys, "Add a JPG/PNG image first (option c).")
	if !ok {
		return
	}

	defaults := m.s.Config().Processing
	for _, v := range imaging.Variants() {
		m.printf("%d. %s\n", int(v), v)
	}
	answer, ok := m.ask(fmt.Sprintf("Select the threshold type (1-5, default %s): ", defaults.Variant))
	if !ok {
		return
	}
	if answer == "" {
		answer = defaults.Variant
	}
	variant, err := imaging.ParseVariant(answer)
	if err != nil {
		m.println("Invalid option.")
		return
	}

	threshold, ok := m.askInt(fmt.Sprintf("Threshold (0-255, default %d): ", defaults.Threshold), defaults.Threshold)
	if !ok {
		return
	}
	kernel, ok := m.askInt(fmt.Sprintf("Kernel size (default %d): ", defaults.KernelSize), defaults.KernelSize)
	if !ok {
		return
	}
	shape, _ := m.ask(fmt.Sprintf("Shape to draw (circle/square, default %s): ", defaults.Shape))
	if shape == "" {
		shape = defaults.Shape
	}

	res, err := m.s.ProcessImage(key, imaging.Params{
		Variant:    variant,
		Threshold:  threshold,
		KernelSize: kernel,
		Shape:      imaging.ParseShape(shape),
	})
	if err != nil {
		m.printf("Error: %v\n", err)
		return
	}
	if res.Path != "" {
		m.printf("Processed image saved as: %s\n", res.Path)
	}
}

// pickKey lists keys and reads one of them back
func (m *menu) pickKey(title string, keys []string, empty string) (string, bool) {
	if len(keys) == 0 {
		m.printf("Error: no %s available. %s\n", strings.ToLower(title), empty)
		return "", false
	}

	m.printf("%s available:\n", title)
	for _, k := range keys {
		m.printf("  - %s\n", k)
	}

	key, ok := m.ask("Key: ")
	if !ok {
		return "", false
	}
	for _, k := range keys {
		if k == key {
			return key, true
		}
	}
	m.println("Error: key not found.")
	return "", false
}

// ask prints prompt and returns the next trimmed input line
func (m *menu) ask(prompt string) (string, bool) {
	fmt.Fprint(m.out, prompt)
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

// askInt reads an integer; a blank answer yields def
func (m *menu) askInt(prompt string, def int) (int, bool) {
	for {
		answer, ok := m.ask(prompt)
		if !ok {
			return 0, false
		}
		if answer == "" {
			return def, true
		}
		n, err := strconv.Atoi(answer)
		if err == nil {
			return n, true
		}
		m.println("Please enter a whole number.")
	}
}

func (m *menu) println(s string) {
	fmt.Fprintln(m.out, s)
}

func (m *menu) printf(format string, args ...interface{}) {
	fmt.Fprintf(m.out, format, args...)
}
