package service

import (
	"context"
	"sync"
	"time"
)

// Countdown drives at most one ticker at a time. Each tick reports the epoch
// it was started with, so a tick racing a Stop can be recognised as stale.
type Countdown struct {
	interval time.Duration
	onTick   func(epoch uint64)

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewCountdown returns a countdown that calls onTick every interval. A
// non-positive interval disables the ticker; ticks must then be fed by hand.
func NewCountdown(interval time.Duration, onTick func(epoch uint64)) *Countdown {
	return &Countdown{interval: interval, onTick: onTick}
}

// Start replaces any running ticker.
func (c *Countdown) Start(epoch uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	if c.interval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.run(ctx, epoch)
}

// Stop cancels the running ticker without waiting for it to exit.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}

func (c *Countdown) stopLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Countdown) run(ctx context.Context, epoch uint64) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			c.onTick(epoch)
		}
	}
}
