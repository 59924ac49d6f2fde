// Package render turns floor plan state into resolution-independent drawing
// instructions. Everything here is a pure function of its inputs.
package render

import (
	"math"

	"github.com/vbonduro/floorplan/internal/canvas"
	"github.com/vbonduro/floorplan/internal/domain"
)

// Logical sizes, multiplied by the scale at render time.
const (
	strokeWidth   = 2.0
	selectionPad  = 4.0
	selectionLine = 3.0
	highlightPad  = 8.0
	labelSize     = 14.0
)

type OutlineKind string

const (
	OutlineCircle  OutlineKind = "circle"
	OutlineRect    OutlineKind = "rect"
	OutlineEllipse OutlineKind = "ellipse"
)

// Outline is positioned relative to the table's rendered origin.
type Outline struct {
	Kind         OutlineKind `json:"kind" msgpack:"kind"`
	X            float64     `json:"x" msgpack:"x"`
	Y            float64     `json:"y" msgpack:"y"`
	Width        float64     `json:"width" msgpack:"width"`
	Height       float64     `json:"height" msgpack:"height"`
	CornerRadius float64     `json:"cornerRadius,omitempty" msgpack:"cornerRadius,omitempty"`
}

type Ring struct {
	Outline     Outline `json:"outline" msgpack:"outline"`
	Stroke      string  `json:"stroke" msgpack:"stroke"`
	StrokeWidth float64 `json:"strokeWidth" msgpack:"strokeWidth"`
}

type Text struct {
	Value  string  `json:"value" msgpack:"value"`
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Size   float64 `json:"size" msgpack:"size"`
	Colour string  `json:"colour" msgpack:"colour"`
}

type Drawable struct {
	Outline     Outline `json:"outline" msgpack:"outline"`
	Fill        string  `json:"fill" msgpack:"fill"`
	Stroke      string  `json:"stroke" msgpack:"stroke"`
	StrokeWidth float64 `json:"strokeWidth" msgpack:"strokeWidth"`
	// Placeholder is set when the shape had no renderer and a circle was drawn instead.
	Placeholder bool   `json:"placeholder,omitempty" msgpack:"placeholder,omitempty"`
	Selection   *Ring  `json:"selection,omitempty" msgpack:"selection,omitempty"`
	Highlight   *Ring  `json:"highlight,omitempty" msgpack:"highlight,omitempty"`
	Label       Text   `json:"label" msgpack:"label"`
	StatusLabel string `json:"statusLabel" msgpack:"statusLabel"`
}

type TableInput struct {
	Shape    domain.Shape
	Status   domain.Status
	Number   string
	Width    float64
	Height   float64
	Scale       float64
	Selected    bool
	Highlighted bool
}

type shapeRenderer func(w, h, scale float64) Outline

var shapeRenderers = map[domain.Shape]shapeRenderer{
	domain.ShapeRound:     circleOutline,
	domain.ShapeSquare:    roundedRect(4),
	domain.ShapeRectangle: roundedRect(2),
	domain.ShapeOval: func(w, h, _ float64) Outline {
		return Outline{Kind: OutlineEllipse, Width: w, Height: h}
	},
	domain.ShapeBooth: func(w, h, _ float64) Outline {
		return Outline{Kind: OutlineRect, Width: w, Height: h, CornerRadius: math.Min(w, h) / 4}
	},
}

// Table draws a single table. Shapes without a renderer fall back to a
// circular placeholder.
func Table(in TableInput, pal Palette) Drawable {
	w := canvas.ToRendered(in.Scale, in.Width)
	h := canvas.ToRendered(in.Scale, in.Height)

	renderer, ok := shapeRenderers[in.Shape]
	if !ok {
		renderer = circleOutline
	}
	outline := renderer(w, h, in.Scale)
	style := pal.Style(in.Status)

	d := Drawable{
		Outline:     outline,
		Fill:        style.Fill,
		Stroke:      style.Stroke,
		StrokeWidth: strokeWidth * in.Scale,
		Placeholder: !ok,
		StatusLabel: style.Label,
		Label: Text{
			Value:  in.Number,
			X:      w / 2,
			Y:      h / 2,
			Size:   labelSize * in.Scale,
			Colour: pal.LabelColour,
		},
	}
	if in.Selected {
		d.Selection = &Ring{
			Outline:     inflate(outline, selectionPad*in.Scale),
			Stroke:      pal.Selection,
			StrokeWidth: selectionLine * in.Scale,
		}
	}
	// outside the selection ring
	if in.Highlighted {
		d.Highlight = &Ring{
			Outline:     inflate(outline, highlightPad*in.Scale),
			Stroke:      pal.Highlight,
			StrokeWidth: selectionLine * in.Scale,
		}
	}
	return d
}

func circleOutline(w, h, _ float64) Outline {
	d := math.Min(w, h)
	return Outline{Kind: OutlineCircle, X: (w - d) / 2, Y: (h - d) / 2, Width: d, Height: d}
}

func roundedRect(radius float64) shapeRenderer {
	return func(w, h, scale float64) Outline {
		return Outline{Kind: OutlineRect, Width: w, Height: h, CornerRadius: radius * scale}
	}
}

func inflate(o Outline, pad float64) Outline {
	o.X -= pad
	o.Y -= pad
	o.Width += 2 * pad
	o.Height += 2 * pad
	if o.CornerRadius > 0 {
		o.CornerRadius += pad
	}
	return o
}
