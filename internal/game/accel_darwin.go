//go:build darwin

package game

import (
	"log"

	"ballroom/internal/compute"
	"ballroom/internal/config"
	"ballroom/internal/physics"
)

func initAccelerator(cfg config.Config) *physics.GPUResolver {
	// Initialize GPU compute (Metal on Mac works fine)
	info, err := compute.Initialize()
	if err != nil {
		log.Printf("Compute shaders unavailable: %v", err)
		return nil
	}
	log.Printf("Compute: %s | %s | %s | %s", info.Backend, info.Vendor, info.Name, info.DeviceType)

	gpu, err := physics.NewGPUResolver(cfg.Room.HalfSize, cfg.Step.ApproachEpsilon)
	if err != nil {
		log.Printf("Compute: narrow phase unavailable: %v", err)
		return nil
	}
	return gpu
}
