package main

import (
	"log/slog"
	"os"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/tebeka/atexit"

	"github.com/ehwlab/sysevo/evolve"
	"github.com/ehwlab/sysevo/fabric"
	"github.com/ehwlab/sysevo/icap"
	"github.com/ehwlab/sysevo/sysarr"
)

const generations = 10

// referenceImage is a smooth diagonal gradient, the clean training target.
func referenceImage() []byte {
	img := make([]byte, sysarr.ImgSize)
	for y := 0; y < sysarr.ImgHeight; y++ {
		for x := 0; x < sysarr.ImgWidth; x++ {
			img[y*sysarr.ImgWidth+x] = byte(x + y)
		}
	}
	return img
}

// noisyImage is the reference with salt-and-pepper noise on about one pixel
// in eight.
func noisyImage(ref []byte, rng *evolve.Rand) []byte {
	img := make([]byte, len(ref))
	copy(img, ref)
	for i := range img {
		if rng.Intn(8) == 0 {
			if rng.Intn(2) == 0 {
				img[i] = 0
			} else {
				img[i] = 255
			}
		}
	}
	return img
}

func evolveFilter(cfg evolve.Config) {
	engine := sim.NewSerialEngine()

	system := fabric.NewBuilder().
		WithEngine(engine).
		WithFreq(1 * sim.GHz).
		Build("Fabric")

	ref := referenceImage()
	noisy := noisyImage(ref, evolve.NewRand(0xBADC0DE))
	system.LoadInput(noisy)
	system.LoadReference(ref)

	controller := icap.NewController(system, system, sysarr.DefaultFrameTable())

	evo, err := evolve.NewEngine(cfg, sysarr.DefaultGeometry(), controller)
	if err != nil {
		slog.Error("bad configuration", "err", err)
		atexit.Exit(1)
	}

	pop := evolve.NewPopulation(cfg.Tribes)
	evo.Initialize(pop)
	slog.Info("population initialized",
		"tribes", cfg.Tribes,
		"bestFitness", pop[pop.Best()].Fitness)

	for gen := 0; gen < generations; gen++ {
		changes := evo.Generation(pop)
		slog.Info("macro-generation finished",
			"generation", gen,
			"replacements", changes,
			"bestFitness", pop[0].Fitness)
	}

	evolve.WritePopulationTable(os.Stdout, pop, sysarr.NewCodec(sysarr.DefaultGeometry()))

	// Run the champion once more and store its output image.
	controller.Program(&pop[0].Genome, 0)
	controller.Go(sysarr.CmdCompare(1) | sysarr.CmdFilter)
	out := system.Output()

	slog.Info("champion filter applied",
		"noisyError", sumAbsDiff(noisy, ref),
		"filteredError", sumAbsDiff(out, ref),
		"simTime", engine.CurrentTime())
}

func sumAbsDiff(a, b []byte) uint64 {
	var sum uint64
	for i := range a {
		d := int(a[i]) - int(b[i])
		if d < 0 {
			d = -d
		}
		sum += uint64(d)
	}
	return sum
}

func main() {
	// Commit and evaluation traces are far too chatty for a terminal; keep
	// the table on stdout and the logs in a file.
	logFile, err := os.OpenFile("denoise.log", os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o666)
	if err != nil {
		panic(err)
	}
	defer logFile.Close()

	handler := slog.NewJSONHandler(logFile, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))

	cfg := evolve.DefaultConfig()
	if _, err := os.Stat("evolution.yaml"); err == nil {
		cfg, err = evolve.LoadConfig("evolution.yaml")
		if err != nil {
			slog.Error("failed to load evolution.yaml", "err", err)
			atexit.Exit(1)
		}
	}

	evolveFilter(cfg)
	atexit.Exit(0)
}
