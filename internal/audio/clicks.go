// Package audio plays short synthesized clicks when spheres collide.
package audio

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/chewxy/math32"
)

const (
	SampleRate = 44100

	maxVoices  = 16
	clickDecay = 0.025 // seconds to fall to 1/e
	clickLen   = 5 * clickDecay
	baseFreq   = 420.0
)

type voice struct {
	pos  int
	gain float32
	freq float32
}

// Clicks is an io.Reader producing mono float32 little-endian samples. Each
// Trigger adds a decaying sine burst; overlapping bursts are mixed.
type Clicks struct {
	mu         sync.Mutex
	sampleRate int
	voices     []voice
	muted      bool
}

func NewClicks(sampleRate int) *Clicks {
	return &Clicks{sampleRate: sampleRate}
}

// Trigger starts a click. strength in [0, 1] sets loudness and pitch.
func (c *Clicks) Trigger(strength float32) {
	strength = math32.Min(math32.Max(strength, 0), 1)
	if strength == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.muted {
		return
	}
	// Drop the oldest voice when full
	if len(c.voices) >= maxVoices {
		c.voices = c.voices[1:]
	}
	c.voices = append(c.voices, voice{
		gain: 0.6 * strength,
		freq: baseFreq * (1 + strength),
	})
}

// SetMuted silences output and drops any clicks in flight.
func (c *Clicks) SetMuted(muted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.muted = muted
	if muted {
		c.voices = c.voices[:0]
	}
}

func (c *Clicks) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

// Active is the number of clicks still sounding.
func (c *Clicks) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.voices)
}

func (c *Clicks) Read(buf []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(buf) / 4 * 4
	rate := float32(c.sampleRate)
	end := int(clickLen * rate)

	for off := 0; off < n; off += 4 {
		var sample float32
		for i := range c.voices {
			v := &c.voices[i]
			t := float32(v.pos) / rate
			sample += v.gain * math32.Exp(-t/clickDecay) * math32.Sin(2*math.Pi*v.freq*t)
			v.pos++
		}
		// Soft clip so many simultaneous clicks never exceed full scale
		sample /= 1 + math32.Abs(sample)
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(sample))
	}

	live := c.voices[:0]
	for _, v := range c.voices {
		if v.pos < end {
			live = append(live, v)
		}
	}
	c.voices = live
	return n, nil
}
