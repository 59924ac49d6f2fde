package render

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vbonduro/floorplan/internal/domain"
)

// StatusStyle is how a table in a given status is painted and labelled.
type StatusStyle struct {
	Fill   string `json:"fill" yaml:"fill"`
	Stroke string `json:"stroke" yaml:"stroke"`
	Label  string `json:"label" yaml:"label"`
}

// Palette maps every table status to its style, plus the colours shared by all
// tables.
type Palette struct {
	Statuses    map[domain.Status]StatusStyle
	Selection   string
	Highlight   string
	BadgeFill   string
	BadgeText   string
	LabelColour string
}

func DefaultPalette() Palette {
	return Palette{
		Statuses: map[domain.Status]StatusStyle{
			domain.StatusAvailable: {Fill: "#C8E6C9", Stroke: "#2E7D32", Label: "Available"},
			domain.StatusReserved:  {Fill: "#FFF3C4", Stroke: "#F9A825", Label: "Reserved"},
			domain.StatusOccupied:  {Fill: "#FFCDD2", Stroke: "#C62828", Label: "Occupied"},
			domain.StatusBlocked:   {Fill: "#E0E0E0", Stroke: "#616161", Label: "Blocked"},
		},
		Selection:   "#1565C0",
		Highlight:   "#FF6F00",
		BadgeFill:   "#263238",
		BadgeText:   "#FFFFFF",
		LabelColour: "#212121",
	}
}

// Style returns the style for s. Statuses missing from the palette get the
// available style so rendering never fails.
func (p Palette) Style(s domain.Status) StatusStyle {
	if st, ok := p.Statuses[s]; ok {
		return st
	}
	return DefaultPalette().Statuses[domain.StatusAvailable]
}

// paletteFile is the YAML shape of a palette override. Every field is optional.
type paletteFile struct {
	Statuses  map[string]StatusStyle `yaml:"statuses"`
	Selection string                 `yaml:"selection"`
	Highlight string                 `yaml:"highlight"`
	Badge     struct {
		Fill string `yaml:"fill"`
		Text string `yaml:"text"`
	} `yaml:"badge"`
	Label string `yaml:"label"`
}

// LoadPaletteFile reads palette overrides from a YAML file.
func LoadPaletteFile(path string) (Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return Palette{}, fmt.Errorf("failed to open palette: %w", err)
	}
	defer f.Close()

	return LoadPalette(f)
}

// LoadPalette reads YAML overrides on top of DefaultPalette.
func LoadPalette(r io.Reader) (Palette, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Palette{}, fmt.Errorf("failed to read palette: %w", err)
	}

	var raw paletteFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Palette{}, fmt.Errorf("failed to parse palette: %w", err)
	}

	p := DefaultPalette()
	for name, override := range raw.Statuses {
		st, err := domain.ParseStatus(name)
		if err != nil {
			return Palette{}, fmt.Errorf("invalid palette entry: %w", err)
		}
		p.Statuses[st] = mergeStyle(p.Statuses[st], override)
	}
	p.Selection = orDefault(raw.Selection, p.Selection)
	p.Highlight = orDefault(raw.Highlight, p.Highlight)
	p.BadgeFill = orDefault(raw.Badge.Fill, p.BadgeFill)
	p.BadgeText = orDefault(raw.Badge.Text, p.BadgeText)
	p.LabelColour = orDefault(raw.Label, p.LabelColour)
	return p, nil
}

func mergeStyle(base, override StatusStyle) StatusStyle {
	return StatusStyle{
		Fill:   orDefault(override.Fill, base.Fill),
		Stroke: orDefault(override.Stroke, base.Stroke),
		Label:  orDefault(override.Label, base.Label),
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
