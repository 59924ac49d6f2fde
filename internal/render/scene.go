package render

import (
	"github.com/vbonduro/floorplan/internal/canvas"
	"github.com/vbonduro/floorplan/internal/floorplan"
)

// Scene is everything a client needs to paint one area at one scale.
type Scene struct {
	AreaID      int64       `json:"areaId" msgpack:"areaId"`
	Scale       float64     `json:"scale" msgpack:"scale"`
	Width       float64     `json:"width" msgpack:"width"`
	Height      float64     `json:"height" msgpack:"height"`
	GridSpacing float64     `json:"gridSpacing" msgpack:"gridSpacing"`
	Dirty       bool        `json:"dirty" msgpack:"dirty"`
	Mode        string      `json:"mode" msgpack:"mode"`
	Items       []SceneItem `json:"items" msgpack:"items"`
}

type SceneItem struct {
	TableID     string       `json:"tableId" msgpack:"tableId"`
	X           float64      `json:"x" msgpack:"x"`
	Y           float64      `json:"y" msgpack:"y"`
	Visual      Drawable     `json:"visual" msgpack:"visual"`
	Badge       *BadgeLayout `json:"badge,omitempty" msgpack:"badge,omitempty"`
	Selected    bool         `json:"selected" msgpack:"selected"`
	Highlighted bool         `json:"highlighted" msgpack:"highlighted"`
	Dragging    bool         `json:"dragging" msgpack:"dragging"`
}

// BuildScene renders every table of snap in paint order.
func BuildScene(snap floorplan.Snapshot, model canvas.Model, scale float64, pal Palette) (Scene, error) {
	if err := canvas.ValidateScale(scale); err != nil {
		return Scene{}, err
	}

	w, h := model.Size(scale)
	scene := Scene{
		AreaID:      snap.AreaID,
		Scale:       scale,
		Width:       w,
		Height:      h,
		GridSpacing: canvas.GridSpacing(scale),
		Dirty:       snap.Dirty,
		Mode:        snap.Mode.String(),
		Items:       make([]SceneItem, 0, len(snap.Tables)),
	}
	for _, t := range snap.Tables {
		pos := canvas.PointToRendered(scale, t.Position)
		selected := snap.Selected[t.ID]
		highlighted := snap.Highlighted[t.ID]
		scene.Items = append(scene.Items, SceneItem{
			TableID: t.ID,
			X:       pos.X,
			Y:       pos.Y,
			Visual: Table(TableInput{
				Shape:       t.Shape,
				Status:      t.Status,
				Number:      t.Number,
				Width:       t.Width,
				Height:      t.Height,
				Scale:       scale,
				Selected:    selected,
				Highlighted: highlighted,
			}, pal),
			Badge:       Badge(snap.Assignment(t.ID), t.Width, scale, pal),
			Selected:    selected,
			Highlighted: highlighted,
			Dragging:    snap.DraggingID == t.ID,
		})
	}
	return scene, nil
}
