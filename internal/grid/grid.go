// Package grid maps cost/benefit coordinates onto the 800x800 pixel
// tactical matrix and back. Cells are 80px wide with a 40px edge offset;
// the vertical axis is inverted so benefit 10 sits at the top.
package grid

import (
	"eugenestrat/internal/models"
)

const (
	CellSize   = 80
	EdgeOffset = 40
	MinCoord   = 1
	MaxCoord   = 10
)

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Coords struct {
	Cost    int `json:"cost"`
	Benefit int `json:"benefit"`
}

// ToPixels converts a cost/benefit pair to its pixel position.
func ToPixels(cost, benefit int) Position {
	return Position{
		X: (cost-MinCoord)*CellSize + EdgeOffset,
		Y: (MaxCoord-benefit)*CellSize + EdgeOffset,
	}
}

// ToCoords is the inverse of ToPixels, rounding to the nearest cell.
// Used for drag-to-reposition interactions.
func ToCoords(x, y int) Coords {
	return Coords{
		Cost:    roundDiv(x-EdgeOffset, CellSize) + MinCoord,
		Benefit: MaxCoord - roundDiv(y-EdgeOffset, CellSize),
	}
}

// Occupied reports whether any of the given projects sits on the exact
// cost/benefit pair. Status is deliberately ignored: this is the
// display-side collision check, the durable uniqueness rule (which
// exempts completed projects) lives in the database schema.
func Occupied(cost, benefit int, projects []models.Project) bool {
	for _, p := range projects {
		if p.Cost == cost && p.Benefit == benefit {
			return true
		}
	}
	return false
}

// FirstFreeCell scans cost 1..10 outer, benefit 1..10 inner and returns
// the first unoccupied pair. The second return is false when all 100
// cells are taken.
func FirstFreeCell(projects []models.Project) (Coords, bool) {
	for cost := MinCoord; cost <= MaxCoord; cost++ {
		for benefit := MinCoord; benefit <= MaxCoord; benefit++ {
			if !Occupied(cost, benefit, projects) {
				return Coords{Cost: cost, Benefit: benefit}, true
			}
		}
	}
	return Coords{}, false
}

func roundDiv(n, d int) int {
	if n < 0 {
		return -((-n + d/2) / d)
	}
	return (n + d/2) / d
}
