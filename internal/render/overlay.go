package render

import (
	"strconv"

	"github.com/vbonduro/floorplan/internal/canvas"
	"github.com/vbonduro/floorplan/internal/domain"
)

const (
	badgeRadius  = 12.0
	badgeOffsetX = -4.0
	badgeOffsetY = 4.0
	badgeText    = 12.0
)

// BadgeLayout is the party-size badge, centred at (CX, CY) relative to the
// table's rendered origin.
type BadgeLayout struct {
	CX       float64 `json:"cx" msgpack:"cx"`
	CY       float64 `json:"cy" msgpack:"cy"`
	Radius   float64 `json:"radius" msgpack:"radius"`
	Text     string  `json:"text" msgpack:"text"`
	TextSize float64 `json:"textSize" msgpack:"textSize"`
	Fill     string  `json:"fill" msgpack:"fill"`
	Colour   string  `json:"colour" msgpack:"colour"`
}

// Badge anchors the party size at the table's top-right corner. It returns nil
// when no party is seated.
func Badge(a *domain.Assignment, tableWidth, scale float64, pal Palette) *BadgeLayout {
	if a == nil {
		return nil
	}
	return &BadgeLayout{
		CX:       canvas.ToRendered(scale, tableWidth+badgeOffsetX),
		CY:       canvas.ToRendered(scale, badgeOffsetY),
		Radius:   badgeRadius * scale,
		Text:     strconv.Itoa(a.PartySize),
		TextSize: badgeText * scale,
		Fill:     pal.BadgeFill,
		Colour:   pal.BadgeText,
	}
}
