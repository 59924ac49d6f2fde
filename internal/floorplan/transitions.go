package floorplan

import "github.com/vbonduro/floorplan/internal/domain"

var transitions = map[domain.Status]map[domain.Status]bool{
	domain.StatusAvailable: {
		domain.StatusReserved: true,
		domain.StatusOccupied: true,
		domain.StatusBlocked:  true,
	},
	domain.StatusReserved: {
		domain.StatusOccupied:  true,
		domain.StatusAvailable: true,
	},
	domain.StatusOccupied: {
		domain.StatusAvailable: true,
	},
	domain.StatusBlocked: {
		domain.StatusAvailable: true,
	},
}

// CanTransition reports whether a table may move from one status to another.
// Self-transitions are not allowed.
func CanTransition(from, to domain.Status) bool {
	return transitions[from][to]
}

func canAssign(s domain.Status) bool {
	return s == domain.StatusAvailable || s == domain.StatusReserved
}
