package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fwordingham/arctorus/internal/detector"
)

// SaveCCDRecords writes each CCD's auxiliary hit log as a CSV of
// (x, y, z, raman_depth, loop_count).
func SaveCCDRecords(ccds []*detector.CCD, dir string) error {
	if len(ccds) == 0 {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("output: %w", err)
	}

	for _, ccd := range ccds {
		f, err := os.Create(filepath.Join(dir, ccd.Name+"_hits.csv"))
		if err != nil {
			return fmt.Errorf("output: %w", err)
		}

		w := csv.NewWriter(f)
		if err := w.Write([]string{"x", "y", "z", "raman_depth", "loop_count"}); err != nil {
			f.Close()
			return fmt.Errorf("output: %w", err)
		}
		for _, rec := range ccd.Records() {
			row := []string{
				formatFloat(rec.Pos[0]),
				formatFloat(rec.Pos[1]),
				formatFloat(rec.Pos[2]),
				formatFloat(rec.RamanDepth),
				strconv.Itoa(rec.LoopCount),
			}
			if err := w.Write(row); err != nil {
				f.Close()
				return fmt.Errorf("output: %w", err)
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return fmt.Errorf("output: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("output: %w", err)
		}
	}

	return nil
}

// SaveSpectrometerData writes each spectrometer's histogram as a CSV of
// (wavelength, weight) bin rows.
func SaveSpectrometerData(spectrometers []*detector.Spectrometer, dir string) error {
	if len(spectrometers) == 0 {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("output: %w", err)
	}

	for _, spec := range spectrometers {
		f, err := os.Create(filepath.Join(dir, spec.Name+".csv"))
		if err != nil {
			return fmt.Errorf("output: %w", err)
		}

		w := csv.NewWriter(f)
		if err := w.Write([]string{"wavelength", "weight"}); err != nil {
			f.Close()
			return fmt.Errorf("output: %w", err)
		}
		for i, weight := range spec.Bins() {
			row := []string{formatFloat(spec.BinCenter(i)), formatFloat(weight)}
			if err := w.Write(row); err != nil {
				f.Close()
				return fmt.Errorf("output: %w", err)
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return fmt.Errorf("output: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("output: %w", err)
		}
	}

	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
