// Stress test comparing the CPU and GPU narrow phase on the same rooms
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"ballroom/internal/compute"
	"ballroom/internal/config"
	"ballroom/internal/physics"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

var (
	steps   = flag.Int("steps", 200, "Sub-steps per run")
	cpuOnly = flag.Bool("cpu", false, "Skip the GPU runs")
)

func main() {
	flag.Parse()

	gpu := !*cpuOnly
	if gpu {
		info, err := compute.Initialize()
		if err != nil {
			log.Printf("Compute unavailable, CPU only: %v", err)
			gpu = false
		} else {
			fmt.Printf("GPU: %s | %s | %s\n\n", info.Backend, info.Vendor, info.Name)
		}
	}

	// Test various sphere counts
	testCounts := []int{64, 512, 1000, 4096, 8000}

	for _, count := range testCounts {
		runCount(count, gpu)
	}
}

// roomFor returns a config whose room holds count spheres at the stock density.
func roomFor(count int) config.Config {
	cfg := config.Default()
	cfg.Spawn.Count = count
	cfg.Room.HalfSize = float32(cfg.GridDim())*cfg.GridSpacing()/2 + 2
	return cfg
}

func newWorld(cfg config.Config, resolver physics.Resolver) *physics.CollisionWorld {
	w, err := physics.NewCollisionWorld(cfg, resolver)
	if err != nil {
		log.Fatal(err)
	}
	// Consistent results
	if err := w.Populate(rand.New(rand.NewPCG(42, 42))); err != nil {
		log.Fatal(err)
	}
	return w
}

func timeRun(w *physics.CollisionWorld) time.Duration {
	dt := w.Config().Step.SubStep
	start := time.Now()
	for i := 0; i < *steps; i++ {
		w.Advance(dt)
	}
	return time.Since(start) / time.Duration(*steps)
}

func runCount(count int, gpu bool) {
	cfg := roomFor(count)

	cpuWorld := newWorld(cfg, nil)
	cpuTime := timeRun(cpuWorld)
	st := cpuWorld.Stats()

	if !gpu {
		fmt.Printf("%5d spheres: CPU %8v/step (%5d pairs, %4d leaves, depth %d)\n",
			count, cpuTime.Round(time.Microsecond), st.CandidatePairs, st.Leaves, st.Depth)
		return
	}

	resolver, err := physics.NewGPUResolver(cfg.Room.HalfSize, cfg.Step.ApproachEpsilon)
	if err != nil {
		fmt.Printf("%5d spheres: GPU ERROR: %v\n", count, err)
		return
	}
	defer resolver.Release()

	gpuWorld := newWorld(cfg, resolver)
	gpuTime := timeRun(gpuWorld)

	// Calculate speedup
	speedup := float64(cpuTime) / float64(gpuTime)

	fmt.Printf("%5d spheres: GPU %8v | CPU %8v | %.1fx speedup | %5d pairs | drift %.2e | %d fallbacks\n",
		count, gpuTime.Round(time.Microsecond), cpuTime.Round(time.Microsecond), speedup,
		st.CandidatePairs, drift(cpuWorld, gpuWorld), gpuWorld.Stats().Fallbacks)
}

// drift is the largest position difference between matching spheres.
func drift(a, b *physics.CollisionWorld) float32 {
	sa, sb := a.Spheres(), b.Spheres()
	var worst float32
	for i := range min(len(sa), len(sb)) {
		worst = math32.Max(worst, rl.Vector3Distance(sa[i].Position, sb[i].Position))
	}
	return worst
}
