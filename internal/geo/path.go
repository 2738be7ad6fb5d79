package geo

import (
	"encoding/json"
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/flytrace/deconflict/pkg/core"
)

// PathLineString converts a trajectory's waypoints into an XYZ
// LineString for export to GIS-aware consumers. Needs at least two
// waypoints; a single-waypoint trajectory has no path geometry.
func PathLineString(t *core.Trajectory) (geom.LineString, error) {
	if len(t.Waypoints) < 2 {
		return geom.LineString{}, fmt.Errorf("trajectory %q needs at least 2 waypoints for a path, got %d", t.ID, len(t.Waypoints))
	}

	flatCoords := make([]float64, 0, len(t.Waypoints)*3)
	for _, wp := range t.Waypoints {
		flatCoords = append(flatCoords, wp.X, wp.Y, wp.Z)
	}

	seq := geom.NewSequence(flatCoords, geom.DimXYZ)
	return geom.NewLineString(seq), nil
}

// ParsePolyline parses a JSON array of coordinates into positions.
// Input format: "[[x1,y1],[x2,y2],...]" with an optional third element
// per coordinate for altitude. This is the shape the point-and-click
// editor emits when sketching a path before timestamps are assigned.
func ParsePolyline(input string) ([]core.Position3D, error) {
	var coords [][]float64
	if err := json.Unmarshal([]byte(input), &coords); err != nil {
		return nil, fmt.Errorf("failed to parse polyline JSON: %w", err)
	}

	if len(coords) < 2 {
		return nil, fmt.Errorf("polyline must have at least 2 points, got %d", len(coords))
	}

	positions := make([]core.Position3D, len(coords))
	for i, coord := range coords {
		if len(coord) < 2 {
			return nil, fmt.Errorf("coordinate %d has insufficient values", i)
		}
		positions[i] = core.Position3D{X: coord[0], Y: coord[1]}
		if len(coord) > 2 {
			positions[i].Z = coord[2]
		}
	}

	return positions, nil
}
