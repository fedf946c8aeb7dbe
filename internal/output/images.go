package output

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"

	"github.com/fwordingham/arctorus/internal/detector"
	"github.com/fwordingham/arctorus/internal/voxelgrid"
)

// sliceScale is the nearest-neighbour upscale factor applied to voxel
// slice and CCD images so small grids stay legible.
const sliceScale = 4

// SaveGridImages writes the voxel grid's absorbed-energy field as slice
// images along each axis: one stacked master image per axis in dir/grid,
// plus a per-axis subdirectory of single-slice images. Pixel value is the fourth root of
// the voxel's fraction of the maximum energy, through the rainbow map.
func SaveGridImages(grid *voxelgrid.Grid, dir string) error {
	n := grid.NumCells()
	energy := grid.Snapshot()
	max := grid.MaxEnergy()

	frac := func(i, j, k int) float64 {
		if max <= 0 {
			return 0
		}
		e := energy[(i*n[1]+j)*n[2]+k]
		return math.Sqrt(math.Sqrt(e / max))
	}

	axes := []struct {
		name          string
		slices, w, h  int
		at            func(slice, u, v int) float64
	}{
		{"x", n[0], n[1], n[2], func(s, u, v int) float64 { return frac(s, u, v) }},
		{"y", n[1], n[0], n[2], func(s, u, v int) float64 { return frac(u, s, v) }},
		{"z", n[2], n[0], n[1], func(s, u, v int) float64 { return frac(u, v, s) }},
	}

	for _, ax := range axes {
		sliceDir := filepath.Join(dir, "grid", ax.name)
		if err := os.MkdirAll(sliceDir, 0o755); err != nil {
			return fmt.Errorf("output: %w", err)
		}

		// Master image: all slices stacked vertically with a separator row.
		master := image.NewNRGBA(image.Rect(0, 0, ax.w, (ax.h+1)*ax.slices-1))

		for s := 0; s < ax.slices; s++ {
			img := image.NewNRGBA(image.Rect(0, 0, ax.w, ax.h))
			startRow := s * (ax.h + 1)
			for u := 0; u < ax.w; u++ {
				for v := 0; v < ax.h; v++ {
					c := rainbow(ax.at(s, u, v))
					img.SetNRGBA(u, ax.h-1-v, c)
					master.SetNRGBA(u, startRow+ax.h-1-v, c)
				}
			}
			if err := writePNG(filepath.Join(sliceDir, fmt.Sprintf("slice_%03d.png", s)), upscale(img)); err != nil {
				return err
			}
		}

		if err := writePNG(filepath.Join(dir, "grid", ax.name+"_master.png"), upscale(master)); err != nil {
			return err
		}
	}

	return nil
}

// SaveCCDImages writes one image per CCD. All images share the global
// maximum channel value across every CCD so intensities are comparable
// between detectors.
func SaveCCDImages(ccds []*detector.CCD, dir string) error {
	if len(ccds) == 0 {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("output: %w", err)
	}

	globalMax := 0.0
	for _, ccd := range ccds {
		if m := ccd.MaxChannel(); m > globalMax {
			globalMax = m
		}
	}

	for _, ccd := range ccds {
		w, h := ccd.Width(), ccd.Height()
		pixels := ccd.Pixels()

		img := image.NewNRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				p := pixels[y*w+x]
				var c [3]uint8
				for i := 0; i < 3; i++ {
					if globalMax > 0 {
						c[i] = channel(math.Sqrt(math.Sqrt(p[i] / globalMax)))
					}
				}
				img.SetNRGBA(x, h-1-y, color.NRGBA{R: c[0], G: c[1], B: c[2], A: 255})
			}
		}

		if err := writePNG(filepath.Join(dir, ccd.Name+".png"), upscale(img)); err != nil {
			return err
		}
	}

	return nil
}

// upscale enlarges an image by sliceScale with nearest-neighbour
// sampling, keeping voxel boundaries crisp.
func upscale(src *image.NRGBA) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*sliceScale, b.Dy()*sliceScale))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("output: encode %s: %w", path, err)
	}
	return nil
}
