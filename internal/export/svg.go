package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/odestream/internal/sim"
)

// SVG draws the projection of a trajectory onto slots xIdx and yIdx as a
// single polyline.
func SVG(w io.Writer, traj sim.View, xIdx, yIdx, width, height int, strokeColor string) error {
	if traj.Len() < 2 {
		return fmt.Errorf("svg: need at least 2 samples, have %d", traj.Len())
	}

	// Find bounds
	first := traj.At(0).Y
	minX, maxX := first[xIdx], first[xIdx]
	minY, maxY := first[yIdx], first[yIdx]
	for i := 1; i < traj.Len(); i++ {
		y := traj.At(i).Y
		minX, maxX = math.Min(minX, y[xIdx]), math.Max(maxX, y[xIdx])
		minY, maxY = math.Min(minY, y[yIdx]), math.Max(maxY, y[yIdx])
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor)

	for i := 0; i < traj.Len(); i++ {
		y := traj.At(i).Y
		px := (y[xIdx] - minX) / rangeX * float64(width)
		py := float64(height) - (y[yIdx]-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", px, py)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", px, py)
		}
	}

	sb.WriteString(`"/>
</svg>
`)
	_, err := io.WriteString(w, sb.String())
	return err
}
