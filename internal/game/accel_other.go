//go:build !darwin

package game

import (
	"log"

	"ballroom/internal/config"
	"ballroom/internal/physics"
)

func initAccelerator(config.Config) *physics.GPUResolver {
	// Disabled next to a GL window due to EGL/WebGPU conflicts with NVIDIA on X11
	log.Println("Compute: disabled on this platform (EGL conflict workaround)")
	return nil
}
