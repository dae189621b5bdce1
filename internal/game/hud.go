package game

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Theme colors - indigo dark theme
var (
	colorBgDark    = rl.NewColor(10, 10, 15, 255)
	colorBgPanel   = rl.NewColor(18, 18, 24, 230)
	colorBgElement = rl.NewColor(28, 28, 38, 255)
	colorBgHover   = rl.NewColor(38, 38, 52, 255)
	colorAccent    = rl.NewColor(108, 99, 255, 255) // #6c63ff

	colorTextPrimary   = rl.NewColor(255, 255, 255, 255)
	colorTextSecondary = rl.NewColor(200, 200, 208, 255)
	colorTextMuted     = rl.NewColor(119, 119, 119, 255)
)

const (
	hudWidth   = 240
	hudHeight  = 274
	hudMargin  = 10
	hudRow     = 24
	hudPadding = 12
)

func initHUDStyle() {
	gui.SetStyle(gui.DEFAULT, gui.BACKGROUND_COLOR, gui.NewColorPropertyValue(colorBgDark))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_NORMAL, gui.NewColorPropertyValue(colorBgElement))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_FOCUSED, gui.NewColorPropertyValue(colorBgHover))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_PRESSED, gui.NewColorPropertyValue(colorAccent))

	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_NORMAL, gui.NewColorPropertyValue(colorTextSecondary))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_FOCUSED, gui.NewColorPropertyValue(colorTextPrimary))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_PRESSED, gui.NewColorPropertyValue(colorTextPrimary))

	gui.SetStyle(gui.DEFAULT, gui.BORDER_COLOR_NORMAL, gui.NewColorPropertyValue(rl.NewColor(50, 50, 65, 255)))
	gui.SetStyle(gui.DEFAULT, gui.BORDER_COLOR_FOCUSED, gui.NewColorPropertyValue(colorAccent))

	gui.SetStyle(gui.DEFAULT, gui.TEXT_SIZE, 15)
}

func hudBounds() rl.Rectangle {
	return rl.Rectangle{
		X:      float32(rl.GetScreenWidth() - hudWidth - hudMargin),
		Y:      hudMargin,
		Width:  hudWidth,
		Height: hudHeight,
	}
}

// overHUD keeps clicks on the panel from selecting spheres behind it.
func overHUD(p rl.Vector2) bool {
	return rl.CheckCollisionPointRec(p, hudBounds())
}

// drawHUD draws the simulation panel: controls on top, counters below.
func (g *Game) drawHUD() {
	b := hudBounds()
	rl.DrawRectangleRec(b, colorBgPanel)
	rl.DrawRectangleLinesEx(b, 1, colorAccent)

	x := b.X + hudPadding
	y := b.Y + hudPadding
	w := b.Width - 2*hudPadding

	g.Paused = gui.CheckBox(rl.Rectangle{X: x, Y: y, Width: 16, Height: 16}, "Paused", g.Paused)
	y += hudRow

	if g.gpu != nil {
		if useGPU := gui.CheckBox(rl.Rectangle{X: x, Y: y, Width: 16, Height: 16}, "GPU narrow phase", g.UseGPU); useGPU != g.UseGPU {
			g.setGPU(useGPU)
		}
	} else {
		rl.DrawText("GPU unavailable", int32(x), int32(y), 15, colorTextMuted)
	}
	y += hudRow

	if g.sound != nil {
		muted := g.sound.Clicks.Muted()
		if sound := gui.CheckBox(rl.Rectangle{X: x, Y: y, Width: 16, Height: 16}, "Impact sounds", !muted); sound == muted {
			g.sound.Clicks.SetMuted(!sound)
		}
		y += hudRow
	}

	rl.DrawText("Time scale", int32(x), int32(y), 15, colorTextSecondary)
	y += 18
	g.TimeScale = gui.Slider(rl.Rectangle{X: x, Y: y, Width: w - 40, Height: 14}, "",
		fmt.Sprintf("%.2f", g.TimeScale), g.TimeScale, 0, 2)
	y += hudRow + 4

	st := g.World.Stats()
	lines := []string{
		fmt.Sprintf("Spheres:     %d", g.World.Len()),
		fmt.Sprintf("Backend:     %s", st.Resolver),
		fmt.Sprintf("Sub-steps:   %d", st.Steps),
		fmt.Sprintf("Pairs:       %d", st.CandidatePairs),
		fmt.Sprintf("Wall pairs:  %d", st.CandidateWallPairs),
		fmt.Sprintf("Octree:      %d leaves, depth %d", st.Leaves, st.Depth),
		fmt.Sprintf("Update: %.2f ms  Draw: %.2f ms", g.updateMs, g.drawMs),
	}
	if st.Fallbacks > 0 {
		lines = append(lines, fmt.Sprintf("CPU fallbacks: %d", st.Fallbacks))
	}
	for _, line := range lines {
		rl.DrawText(line, int32(x), int32(y), 14, colorTextSecondary)
		y += 18
	}
}
