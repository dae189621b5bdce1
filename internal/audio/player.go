package audio

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// Global oto context - one per process
var (
	otoContext     *oto.Context
	otoContextOnce sync.Once
	otoContextErr  error
)

func initOtoContext() error {
	otoContextOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   SampleRate,
			ChannelCount: 1,
			Format:       oto.FormatFloat32LE,
		}
		var ready chan struct{}
		otoContext, ready, otoContextErr = oto.NewContext(op)
		if otoContextErr != nil {
			return
		}
		<-ready
	})
	return otoContextErr
}

// Player streams Clicks to the default output device.
type Player struct {
	Clicks *Clicks
	player *oto.Player
}

func NewPlayer() (*Player, error) {
	if err := initOtoContext(); err != nil {
		return nil, fmt.Errorf("failed to create audio context: %w", err)
	}
	clicks := NewClicks(SampleRate)
	p := &Player{Clicks: clicks, player: otoContext.NewPlayer(clicks)}
	p.player.Play()
	return p, nil
}

func (p *Player) Close() error {
	return p.player.Close()
}
