// Package mission loads and saves mission documents and holds the
// currently loaded mission. The engine only reads trajectories out of
// a document; mission-level metadata it does not understand is carried
// through a load/save round trip unmodified.
package mission

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/flytrace/deconflict/internal/geo"
	"github.com/flytrace/deconflict/internal/trajectory"
	"github.com/flytrace/deconflict/pkg/core"
)

// ErrMalformedDocument is returned when a mission file cannot be
// decoded into the expected shape.
var ErrMalformedDocument = errors.New("malformed mission document")

// WaypointEntry is the persisted waypoint shape. Waypoints drawn on a
// map may carry EPSG:4326 lon/lat instead of planar x/y; those are
// projected to EPSG:3857 meters on load.
type WaypointEntry struct {
	X         float64  `json:"x,omitempty"`
	Y         float64  `json:"y,omitempty"`
	Z         float64  `json:"z,omitempty"`
	Lon       *float64 `json:"lon,omitempty"`
	Lat       *float64 `json:"lat,omitempty"`
	Timestamp string   `json:"timestamp"`
}

// Position returns the waypoint's planar position, projecting lon/lat
// when present.
func (w *WaypointEntry) Position() core.Position3D {
	if w.Lon != nil && w.Lat != nil {
		return geo.PositionFrom4326(*w.Lon, *w.Lat, w.Z)
	}
	return core.Position3D{X: w.X, Y: w.Y, Z: w.Z}
}

// WindowEntry is the persisted time window shape.
type WindowEntry struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DroneEntry is the persisted per-drone shape. Older files name the
// identifier "drone_id" rather than "id"; both are accepted and "id"
// wins when both are present. A drone may carry a polyline sketch in
// "path" instead of timestamped waypoints; the editor emits those
// before timestamps are assigned.
type DroneEntry struct {
	ID         string          `json:"id,omitempty"`
	LegacyID   string          `json:"drone_id,omitempty"`
	Color      string          `json:"color,omitempty"`
	Waypoints  []WaypointEntry `json:"waypoints,omitempty"`
	Path       string          `json:"path,omitempty"`
	TimeWindow *WindowEntry    `json:"time_window,omitempty"`
}

// Document is the persisted mission file: one primary drone, any
// number of simulated flights, and free-form metadata.
type Document struct {
	Description string       `json:"description,omitempty"`
	Created     string       `json:"created,omitempty"`
	DroneCount  int          `json:"drone_count,omitempty"`
	Primary     *DroneEntry  `json:"primary,omitempty"`
	Simulated   []DroneEntry `json:"simulated_flights,omitempty"`

	// extra holds metadata keys the engine does not model. They are
	// re-emitted verbatim on save.
	extra map[string]json.RawMessage
}

var knownDocumentKeys = map[string]bool{
	"description":       true,
	"created":           true,
	"drone_count":       true,
	"primary":           true,
	"simulated_flights": true,
}

// UnmarshalJSON decodes the known fields and retains everything else.
func (d *Document) UnmarshalJSON(data []byte) error {
	type alias Document
	var known alias
	if err := json.Unmarshal(data, &known); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	for key := range raw {
		if knownDocumentKeys[key] {
			delete(raw, key)
		}
	}

	*d = Document(known)
	if len(raw) > 0 {
		d.extra = raw
	}
	return nil
}

// MarshalJSON re-emits known fields plus any retained metadata.
func (d Document) MarshalJSON() ([]byte, error) {
	type alias Document
	knownJSON, err := json.Marshal(alias(d))
	if err != nil {
		return nil, err
	}
	if len(d.extra) == 0 {
		return knownJSON, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(knownJSON, &merged); err != nil {
		return nil, err
	}
	for key, val := range d.extra {
		merged[key] = val
	}
	return json.Marshal(merged)
}

// timestampLayouts are the accepted waypoint time formats: RFC3339,
// naive ISO-8601 (assumed UTC), and bare clock time.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"15:04:05",
}

// ParseTimestamp parses a persisted timestamp string.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable timestamp %q", ErrMalformedDocument, s)
}

// FormatTimestamp is the inverse of ParseTimestamp for values written
// by this engine.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Trajectory converts a drone entry into a validated core trajectory.
func (e *DroneEntry) Trajectory() (*core.Trajectory, error) {
	id := e.ID
	if id == "" {
		id = e.LegacyID
	}

	if len(e.Waypoints) == 0 && e.Path != "" {
		return e.pathTrajectory(id)
	}

	waypoints := make([]core.Waypoint, len(e.Waypoints))
	for i, w := range e.Waypoints {
		ts, err := ParseTimestamp(w.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("drone %q waypoint %d: %w", id, i, err)
		}
		waypoints[i] = core.Waypoint{
			Position3D: w.Position(),
			Timestamp:  ts,
		}
	}

	var window core.TimeWindow
	if e.TimeWindow != nil {
		start, err := ParseTimestamp(e.TimeWindow.Start)
		if err != nil {
			return nil, fmt.Errorf("drone %q window start: %w", id, err)
		}
		end, err := ParseTimestamp(e.TimeWindow.End)
		if err != nil {
			return nil, fmt.Errorf("drone %q window end: %w", id, err)
		}
		window = core.TimeWindow{Start: start, End: end}
	} else if len(waypoints) > 0 {
		window = core.TimeWindow{
			Start: waypoints[0].Timestamp,
			End:   waypoints[len(waypoints)-1].Timestamp,
		}
	}

	return trajectory.New(id, e.Color, window, waypoints)
}

// pathTrajectory builds a trajectory from a polyline sketch. The sketch
// carries no per-point timestamps; they are spread evenly across the
// declared time window, which a sketched drone must therefore have.
func (e *DroneEntry) pathTrajectory(id string) (*core.Trajectory, error) {
	if e.TimeWindow == nil {
		return nil, fmt.Errorf("%w: drone %q has a path but no time_window", ErrMalformedDocument, id)
	}

	positions, err := geo.ParsePolyline(e.Path)
	if err != nil {
		return nil, fmt.Errorf("drone %q: %w", id, err)
	}

	start, err := ParseTimestamp(e.TimeWindow.Start)
	if err != nil {
		return nil, fmt.Errorf("drone %q window start: %w", id, err)
	}
	end, err := ParseTimestamp(e.TimeWindow.End)
	if err != nil {
		return nil, fmt.Errorf("drone %q window end: %w", id, err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: drone %q window ends before it starts", ErrMalformedDocument, id)
	}

	step := end.Sub(start) / time.Duration(len(positions)-1)
	waypoints := make([]core.Waypoint, len(positions))
	for i, p := range positions {
		waypoints[i] = core.Waypoint{
			Position3D: p,
			Timestamp:  start.Add(time.Duration(i) * step),
		}
	}
	// Pin the last point to the window end; the division truncates.
	waypoints[len(waypoints)-1].Timestamp = end

	return trajectory.New(id, e.Color, core.TimeWindow{Start: start, End: end}, waypoints)
}

// entryFromTrajectory converts a core trajectory back to its persisted
// shape.
func entryFromTrajectory(t *core.Trajectory) DroneEntry {
	entry := DroneEntry{
		ID:        t.ID,
		Color:     t.Color,
		Waypoints: make([]WaypointEntry, len(t.Waypoints)),
		TimeWindow: &WindowEntry{
			Start: FormatTimestamp(t.Window.Start),
			End:   FormatTimestamp(t.Window.End),
		},
	}
	for i, wp := range t.Waypoints {
		entry.Waypoints[i] = WaypointEntry{
			X:         wp.X,
			Y:         wp.Y,
			Z:         wp.Z,
			Timestamp: FormatTimestamp(wp.Timestamp),
		}
	}
	return entry
}

// Mission converts the document into validated engine types.
func (d *Document) Mission(name string) (*core.Mission, error) {
	m := &core.Mission{
		Name:        name,
		Description: d.Description,
	}
	if d.Created != "" {
		if created, err := ParseTimestamp(d.Created); err == nil {
			m.Created = created
		}
	}
	if d.Primary != nil {
		primary, err := d.Primary.Trajectory()
		if err != nil {
			return nil, err
		}
		m.Primary = primary
	}
	for i := range d.Simulated {
		sim, err := d.Simulated[i].Trajectory()
		if err != nil {
			return nil, err
		}
		m.Simulated = append(m.Simulated, sim)
	}
	return m, nil
}

// FromMission builds a document for the given mission. Metadata from
// prev (which may be nil) is carried over so that keys the engine does
// not model survive a load, edit, save cycle.
func FromMission(m *core.Mission, prev *Document) *Document {
	doc := &Document{
		Description: m.Description,
		DroneCount:  m.DroneCount(),
	}
	if !m.Created.IsZero() {
		doc.Created = FormatTimestamp(m.Created)
	}
	if prev != nil {
		doc.extra = prev.extra
		if doc.Created == "" {
			doc.Created = prev.Created
		}
	}
	if m.Primary != nil {
		entry := entryFromTrajectory(m.Primary)
		doc.Primary = &entry
	}
	for _, sim := range m.Simulated {
		doc.Simulated = append(doc.Simulated, entryFromTrajectory(sim))
	}
	return doc
}

// ReadDocument decodes a mission document.
func ReadDocument(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return &doc, nil
}

// WriteDocument encodes a mission document with the indentation the
// original tooling used.
func WriteDocument(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// LoadFile reads a mission document from disk.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mission file: %w", err)
	}
	defer f.Close()
	return ReadDocument(f)
}

// SaveFile writes a mission document to disk, replacing any previous
// content.
func SaveFile(path string, doc *Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create mission file: %w", err)
	}
	defer f.Close()
	return WriteDocument(f, doc)
}

// LoadSimulatedFile reads a simulated-drones file: either a bare JSON
// array of drone entries (the legacy layout) or a full document whose
// simulated_flights field is used.
func LoadSimulatedFile(path string) ([]*core.Trajectory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read simulated drones file: %w", err)
	}

	var entries []DroneEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		doc, docErr := ReadDocument(bytes.NewReader(data))
		if docErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}
		entries = doc.Simulated
	}

	out := make([]*core.Trajectory, 0, len(entries))
	for i := range entries {
		t, err := entries[i].Trajectory()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
