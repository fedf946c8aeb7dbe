// Command arctorus runs a Monte Carlo photon-transport simulation from a
// JSON scene description and writes the voxel grid, CCD and spectrometer
// outputs.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fwordingham/arctorus/internal/logx"
	"github.com/fwordingham/arctorus/internal/output"
	"github.com/fwordingham/arctorus/internal/sceneconfig"
	"github.com/fwordingham/arctorus/internal/transport"
)

func main() {
	var (
		configPath = flag.String("config", "scene.json", "scene description file")
		packets    = flag.Int64("packets", 1_000_000, "number of photon packets to run")
		seed       = flag.Int64("seed", 1, "run seed; per-worker streams are derived from it")
		workers    = flag.Int("workers", runtime.GOMAXPROCS(0), "parallel worker count")
		outDir     = flag.String("out", "output", "output directory")
		debug      = flag.Bool("debug", false, "enable debug logging")
		paths      = flag.Bool("record-paths", false, "archive per-packet paths (slow)")
	)
	flag.Parse()

	log := logx.NewDefaultLogger("arctorus", *debug)
	if err := run(log, *configPath, *packets, *seed, *workers, *outDir, *paths); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(log logx.Logger, configPath string, packets, seed int64, workers int, outDir string, recordPaths bool) error {
	cfg, err := sceneconfig.Load(configPath)
	if err != nil {
		return err
	}

	log.Infof("assembling scene from %s", configPath)
	sc, err := sceneconfig.Build(cfg, filepath.Dir(configPath))
	if err != nil {
		return err
	}
	log.Infof("scene %s: %d entities, %d lights, %d ccds, %d spectrometers",
		sc.ID, len(sc.Entities), len(sc.Lights), len(sc.CCDs), len(sc.Spectrometers))

	params := cfg.TransportParams(workers)
	params.RecordPaths = recordPaths
	engine := transport.New(sc, params, log)

	// Progress reporting off the hot path, on the configured period.
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		period := cfg.LogUpdatePeriod()
		if period <= 0 {
			period = 10 * time.Second
		}
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				log.Infof("progress: %s", formatProgress(engine.Progress()))
			}
		}
	}()

	start := time.Now()
	log.Infof("running %d packets on %d workers (seed %d)", packets, workers, seed)
	engine.Run(packets, seed)
	close(stop)
	<-done
	log.Infof("transport finished in %s", time.Since(start).Round(time.Millisecond))

	runDir := filepath.Join(outDir, sc.ID.String())
	if err := output.SaveGridImages(sc.Grid, runDir); err != nil {
		return err
	}
	if err := output.SaveCCDImages(sc.CCDs, filepath.Join(runDir, "ccd")); err != nil {
		return err
	}
	if err := output.SaveCCDRecords(sc.CCDs, filepath.Join(runDir, "ccd")); err != nil {
		return err
	}
	if err := output.SaveSpectrometerData(sc.Spectrometers, filepath.Join(runDir, "spectrometer")); err != nil {
		return err
	}
	log.Infof("outputs written to %s", runDir)

	return nil
}

func formatProgress(pct []float64) string {
	parts := make([]string, len(pct))
	for i, p := range pct {
		parts[i] = fmt.Sprintf("w%d=%.0f%%", i, p)
	}
	return strings.Join(parts, " ")
}
