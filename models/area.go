package models

import (
	"strconv"
	"strings"
)

// Area adalah zona denah. Width dan Height membatasi posisi meja saat di-drag.
type Area struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// AreaName turns "area-2" into "Área 2"; other ids are used as-is.
func AreaName(id string) string {
	if n, ok := strings.CutPrefix(id, "area-"); ok {
		if _, err := strconv.Atoi(n); err == nil {
			return "Área " + n
		}
	}
	return id
}

// Bounds returns the allowed offset range for a table inside the area.
func (a Area) Bounds() (minX, minY, maxX, maxY float64) {
	return -a.Width / 2, -a.Height / 2, a.Width / 2, a.Height / 2
}

// Clamp keeps (x, y) inside the area bounds.
func (a Area) Clamp(x, y float64) (float64, float64) {
	minX, minY, maxX, maxY := a.Bounds()
	return clamp(x, minX, maxX), clamp(y, minY, maxY)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
