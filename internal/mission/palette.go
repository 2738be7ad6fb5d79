// internal/mission/palette.go
package mission

import "github.com/flytrace/deconflict/pkg/core"

// PrimaryColor is the display color reserved for the primary drone.
const PrimaryColor = "blue"

// Palette is the rotation of display colors assigned to simulated
// drones that arrive without one.
var Palette = []string{
	"red", "green", "orange", "purple", "brown", "pink", "gray", "olive", "cyan",
}

// AssignColors fills in missing display colors: blue for the primary,
// palette rotation for simulated drones. Existing colors are kept.
func AssignColors(m *core.Mission) {
	if m.Primary != nil && m.Primary.Color == "" {
		m.Primary.Color = PrimaryColor
	}
	for i, sim := range m.Simulated {
		if sim.Color == "" {
			sim.Color = Palette[i%len(Palette)]
		}
	}
}
