package physics

import rl "github.com/gen2brain/raylib-go/raylib"

// Wall labels one of the six planes of the cubic room.
type Wall uint8

const (
	WallLeft   Wall = iota // -X
	WallRight              // +X
	WallBottom             // -Y
	WallTop                // +Y
	WallBack               // -Z
	WallFront              // +Z
)

// Walls lists every wall in query order.
var Walls = [...]Wall{WallLeft, WallRight, WallBottom, WallTop, WallBack, WallFront}

var wallNames = [...]string{"left", "right", "bottom", "top", "back", "front"}

func (w Wall) String() string {
	if int(w) < len(wallNames) {
		return wallNames[w]
	}
	return "unknown"
}

// Axis returns 0, 1 or 2 for X, Y or Z.
func (w Wall) Axis() int {
	return int(w) / 2
}

// Positive reports whether the wall sits on the + side of its axis.
func (w Wall) Positive() bool {
	return w%2 == 1
}

// Normal is the outward unit normal of the wall.
func (w Wall) Normal() rl.Vector3 {
	sign := float32(-1)
	if w.Positive() {
		sign = 1
	}
	var n rl.Vector3
	switch w.Axis() {
	case 0:
		n.X = sign
	case 1:
		n.Y = sign
	default:
		n.Z = sign
	}
	return n
}
