// Package output renders the run's results: voxel-grid slice images, CCD
// images on a shared intensity scale, auxiliary hit-record tables and
// spectrometer histograms. Nothing here runs during transport; it all
// reads snapshots after the workers join.
package output

import (
	"image/color"
)

// rainbow maps a value in [0,1] to the rainbow colormap used for energy
// visualisation. Out-of-range values map to magenta so they stand out.
func rainbow(x float64) color.NRGBA {
	if x < 0.0 || x > 1.0 {
		return color.NRGBA{R: 255, B: 255, A: 255}
	}

	var red float64
	switch {
	case x <= 1.0/9.0:
		red = 1147.5 * (1.0/9.0 - x) / 255.0
	case x <= 5.0/9.0:
		red = 0.0
	case x <= 7.0/9.0:
		red = 1147.5 * (x - 5.0/9.0) / 255.0
	default:
		red = 1.0
	}

	var green float64
	switch {
	case x <= 1.0/9.0:
		green = 0.0
	case x <= 3.0/9.0:
		green = 1147.5 * (x - 1.0/9.0) / 255.0
	case x <= 7.0/9.0:
		green = 1.0
	default:
		green = 1.0 - 1147.5*(x-7.0/9.0)/255.0
	}

	var blue float64
	switch {
	case x <= 3.0/9.0:
		blue = 1.0
	case x <= 5.0/9.0:
		blue = 1.0 - 1147.5*(x-3.0/9.0)/255.0
	default:
		blue = 0.0
	}

	return color.NRGBA{R: channel(red), G: channel(green), B: channel(blue), A: 255}
}

func channel(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255.0 + 0.5)
}
