package domain

import (
	"errors"
	"fmt"
	"time"
)

// Default reference canvas size in logical units.
const (
	DefaultCanvasWidth  = 800
	DefaultCanvasHeight = 494
)

// Gateway errors. Layout stores wrap these so callers can tell a missing area
// from an unreachable backend or a layout that cannot be decoded.
var (
	ErrAreaNotFound     = errors.New("area not found")
	ErrStoreUnavailable = errors.New("layout store unavailable")
	ErrCorruptLayout    = errors.New("stored layout is unreadable")
)

type Area struct {
	ID           int64
	Name         string
	CanvasWidth  float64
	CanvasHeight float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Add(o Point) Point { return Point{X: p.X + o.X, Y: p.Y + o.Y} }
func (p Point) Sub(o Point) Point { return Point{X: p.X - o.X, Y: p.Y - o.Y} }

type Table struct {
	ID       string  `json:"id"`
	Shape    Shape   `json:"shape"`
	Number   string  `json:"tableNumber"`
	Position Point   `json:"position"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Status   Status  `json:"status"`
}

// Contains reports whether the logical point p falls inside the table's bounding box.
func (t Table) Contains(p Point) bool {
	return p.X >= t.Position.X && p.X <= t.Position.X+t.Width &&
		p.Y >= t.Position.Y && p.Y <= t.Position.Y+t.Height
}

// Overlaps reports whether the bounding boxes of t and o intersect with a
// non-zero area. Tables that only touch edges do not overlap.
func (t Table) Overlaps(o Table) bool {
	return t.Position.X < o.Position.X+o.Width && o.Position.X < t.Position.X+t.Width &&
		t.Position.Y < o.Position.Y+o.Height && o.Position.Y < t.Position.Y+t.Height
}

type Assignment struct {
	TableID   string `json:"tableId"`
	PartySize int    `json:"partySize"`
	GuestRef  string `json:"guestRef,omitempty"`
}

// Layout is the persisted content of an area: tables in paint order and the
// assignments of occupied tables. All values are in logical units.
type Layout struct {
	Tables      []Table      `json:"tables"`
	Assignments []Assignment `json:"assignments"`
}

type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeRound
	ShapeSquare
	ShapeRectangle
	ShapeOval
	ShapeBooth
)

var shapeNames = map[Shape]string{
	ShapeUnknown:   "unknown",
	ShapeRound:     "round",
	ShapeSquare:    "square",
	ShapeRectangle: "rectangle",
	ShapeOval:      "oval",
	ShapeBooth:     "booth",
}

var shapesByName = func() map[string]Shape {
	m := make(map[string]Shape, len(shapeNames))
	for s, n := range shapeNames {
		m[n] = s
	}
	return m
}()

// ParseShape never fails: names outside the supported set map to ShapeUnknown.
func ParseShape(s string) Shape {
	return shapesByName[s]
}

func (s Shape) String() string {
	if n, ok := shapeNames[s]; ok {
		return n
	}
	return shapeNames[ShapeUnknown]
}

func (s Shape) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Shape) UnmarshalText(b []byte) error {
	*s = ParseShape(string(b))
	return nil
}

type Status int

const (
	StatusAvailable Status = iota
	StatusReserved
	StatusOccupied
	StatusBlocked
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusAvailable, StatusReserved, StatusOccupied, StatusBlocked}

var statusNames = map[Status]string{
	StatusAvailable: "available",
	StatusReserved:  "reserved",
	StatusOccupied:  "occupied",
	StatusBlocked:   "blocked",
}

func ParseStatus(s string) (Status, error) {
	for st, n := range statusNames {
		if n == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown table status %q", s)
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("status(%d)", int(s))
}

func (s Status) MarshalText() ([]byte, error) {
	if _, ok := statusNames[s]; !ok {
		return nil, fmt.Errorf("unknown table status %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	st, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}
