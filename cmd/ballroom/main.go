package main

import (
	"flag"
	"log"

	"ballroom/internal/config"
	"ballroom/internal/game"
)

var (
	configPath = flag.String("config", "", "TOML config file (defaults are used when empty)")
	backend    = flag.String("backend", "", "Narrow phase: cpu|gpu (overrides the config)")
	count      = flag.Int("count", -1, "Number of spheres to spawn (overrides the config)")
)

func main() {
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatal(err)
		}
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *count >= 0 {
		cfg.Spawn.Count = *count
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	g, err := game.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	g.Run()
}
