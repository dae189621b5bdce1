package game

import (
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"ballroom/internal/audio"
	"ballroom/internal/camera"
	"ballroom/internal/config"
	"ballroom/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type Game struct {
	Config    config.Config
	World     *physics.CollisionWorld
	Camera    *camera.OrbitCamera
	Paused    bool
	TimeScale float32
	UseGPU    bool

	gpu      *physics.GPUResolver // nil when no accelerator
	sound    *audio.Player        // nil when no output device
	rng      *rand.Rand
	selected physics.SphereID
	hasSel   bool

	lastBounces int

	// Debug timing (ms)
	updateMs float64
	drawMs   float64
}

// New builds a populated room. The GPU backend is attached later in Run,
// once the window exists.
func New(cfg config.Config) (*Game, error) {
	w, err := physics.NewCollisionWorld(cfg, nil)
	if err != nil {
		return nil, err
	}
	g := &Game{
		Config:    cfg,
		World:     w,
		Camera:    camera.New(rl.Vector3{}, cfg.Room.HalfSize*4),
		TimeScale: 1,
		rng:       rand.New(rand.NewPCG(cfg.Spawn.Seed, cfg.Spawn.Seed)),
	}
	if err := w.Populate(g.rng); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Game) Run() {
	rl.SetConfigFlags(rl.FlagWindowHighdpi | rl.FlagMsaa4xHint)
	rl.InitWindow(1280, 720, "Ballroom")
	defer rl.CloseWindow()

	rl.SetTargetFPS(120)
	initHUDStyle()

	// Initialize compute after the window so the GL context exists first
	g.gpu = initAccelerator(g.Config)
	if g.gpu != nil {
		defer g.gpu.Release()
	}
	if g.Config.Backend == config.BackendGPU {
		g.setGPU(true)
	}

	if p, err := audio.NewPlayer(); err != nil {
		log.Printf("Audio: impact sounds disabled: %v", err)
	} else {
		g.sound = p
		defer p.Close()
	}

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()
	}
}

func (g *Game) setGPU(on bool) {
	if on && g.gpu == nil {
		log.Println("Physics: GPU backend requested but unavailable, staying on CPU")
		on = false
	}
	g.UseGPU = on
	if on {
		g.World.SetResolver(g.gpu)
	} else {
		g.World.SetResolver(nil)
	}
}

func (g *Game) Update() {
	updateStart := time.Now()
	deltaTime := rl.GetFrameTime()

	g.Camera.Update()

	if rl.IsKeyPressed(rl.KeySpace) {
		g.Paused = !g.Paused
	}
	if rl.IsKeyPressed(rl.KeyG) {
		g.setGPU(!g.UseGPU)
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.respawn()
	}
	if rl.IsKeyPressed(rl.KeyDelete) || rl.IsKeyPressed(rl.KeyBackspace) {
		g.removeSelected()
	}
	if rl.IsMouseButtonPressed(rl.MouseLeftButton) && !overHUD(rl.GetMousePosition()) {
		g.pick()
	}

	if !g.Paused {
		g.World.Advance(deltaTime * g.TimeScale)
		g.playImpacts()
	}

	g.updateMs = float64(time.Since(updateStart).Microseconds()) / 1000.0
}

// playImpacts clicks once per frame, louder the more spheres bounced.
func (g *Game) playImpacts() {
	bounces := g.World.Stats().Bounces
	n := bounces - g.lastBounces
	g.lastBounces = bounces
	if g.sound == nil || n <= 0 {
		return
	}
	g.sound.Clicks.Trigger(float32(n) / 8)
}

// pick selects the sphere under the mouse cursor.
func (g *Game) pick() {
	ray := rl.GetScreenToWorldRay(rl.GetMousePosition(), g.Camera.GetRaylibCamera())
	hit, ok := g.World.Raycast(ray.Position, ray.Direction, 1000)
	g.selected, g.hasSel = hit.Sphere, ok
}

func (g *Game) removeSelected() {
	if !g.hasSel {
		return
	}
	if g.World.RemoveSphere(g.selected) {
		log.Printf("Physics: removed sphere %d, %d left", g.selected, g.World.Len())
	}
	g.hasSel = false
}

// respawn replaces the room with a freshly populated one.
func (g *Game) respawn() {
	w, err := physics.NewCollisionWorld(g.Config, nil)
	if err != nil {
		log.Printf("Physics: respawn failed: %v", err)
		return
	}
	if err := w.Populate(g.rng); err != nil {
		log.Printf("Physics: respawn failed: %v", err)
		return
	}
	g.World = w
	g.hasSel = false
	g.lastBounces = 0
	g.setGPU(g.UseGPU)
}

func (g *Game) Draw() {
	camera := g.Camera.GetRaylibCamera()

	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(20, 20, 30, 255))

	drawStart := time.Now()
	rl.BeginMode3D(camera)
	g.drawRoom()
	g.drawSpheres()
	rl.EndMode3D()
	g.drawMs = float64(time.Since(drawStart).Microseconds()) / 1000.0

	g.DrawUI()
	rl.EndDrawing()
}

func (g *Game) drawRoom() {
	size := 2 * g.Config.Room.HalfSize
	rl.DrawCubeWires(rl.Vector3{}, size, size, size, rl.NewColor(108, 99, 255, 255))
	rl.DrawPlane(rl.Vector3{Y: -g.Config.Room.HalfSize}, rl.Vector2{X: size, Y: size}, rl.NewColor(28, 28, 38, 255))
}

func (g *Game) drawSpheres() {
	for _, s := range g.World.Spheres() {
		rl.DrawSphere(s.Position, s.Radius, s.Color)
		if g.hasSel && s.ID == g.selected {
			rl.DrawSphereWires(s.Position, s.Radius*1.05, 8, 12, rl.Yellow)
		}
	}
}

func (g *Game) DrawUI() {
	rl.DrawText("Right-drag to orbit, wheel to zoom, click to select", 10, 10, 20, rl.LightGray)
	rl.DrawText("Space pause | G backend | R respawn | Del remove", 10, 35, 20, rl.LightGray)
	rl.DrawFPS(10, 60)

	g.drawHUD()

	if g.hasSel {
		if s, ok := g.World.Sphere(g.selected); ok {
			rl.DrawText(fmt.Sprintf("Sphere %d  r=%.2f  m=%.2f  e=%.2f  |v|=%.2f",
				s.ID, s.Radius, s.Mass, s.Restitution, rl.Vector3Length(s.Velocity)),
				10, int32(rl.GetScreenHeight())-30, 18, rl.Yellow)
		}
	}
}
