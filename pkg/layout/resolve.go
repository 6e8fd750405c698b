package layout

import (
	"math"

	"github.com/coinmeme-project/coinmeme/pkg/utils"
)

const (
	// MaxIterations bounds the repair loop. Pathological inputs (e.g. many
	// boxes larger than the frame) may still overlap after the cap; Resolve
	// returns the best-effort result rather than failing.
	MaxIterations = 20

	// SeparationPadding is the extra gap, as a fraction of the unit frame,
	// required between the centers of two separated boxes.
	SeparationPadding = 0.05
)

// Resolve pushes overlapping boxes apart until no pair overlaps or the
// iteration cap is reached, keeping every box inside the unit frame.
//
// The minimum separation uses only the box widths, so the repulsion is
// horizontally biased: tall narrow boxes can remain vertically overlapping
// after resolution. This mirrors the behavior the persisted data was
// repaired with and is kept deliberately.
//
// Pairs are processed in sorted name order, so the result is deterministic
// for a given input. The input map is not modified.
func Resolve(boxes map[string]Box) map[string]Box {
	if len(boxes) < 2 {
		return boxes
	}

	fixed := make(map[string]Box, len(boxes))
	for name, box := range boxes {
		fixed[name] = box
	}
	names := utils.SortedKeys(fixed)

	for iteration := 0; iteration < MaxIterations; iteration++ {
		overlapsFound := false

		for i := 0; i < len(names); i++ {
			for j := i + 1; j < len(names); j++ {
				a := fixed[names[i]]
				b := fixed[names[j]]
				if !Overlaps(a, b) {
					continue
				}
				overlapsFound = true

				dx := b.X - a.X
				dy := b.Y - a.Y
				distance := math.Sqrt(dx*dx + dy*dy)
				if distance == 0 {
					// Coincident centers: separate along the x-axis.
					dx, dy, distance = 1, 0, 1
				}
				dx /= distance
				dy /= distance

				minSeparation := (a.Width+b.Width)/2 + SeparationPadding
				moveDistance := (minSeparation - distance) / 2

				a.X -= dx * moveDistance
				a.Y -= dy * moveDistance
				b.X += dx * moveDistance
				b.Y += dy * moveDistance

				fixed[names[i]] = a.Clamp()
				fixed[names[j]] = b.Clamp()
			}
		}

		if !overlapsFound {
			break
		}
	}
	return fixed
}
