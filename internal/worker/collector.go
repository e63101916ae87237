package worker

import (
	"sync"

	"github.com/sirupsen/logrus"

	"shortly/internal/entity"
)

// Collector accepts click events from the redirect path. Implementations
// must never block the caller: the redirect has already been decided and
// click loss under overload is acceptable, click latency is not.
type Collector interface {
	Collect(click entity.Click)
	Close()
}

// ChannelCollector is the in-process collector: a buffered channel
// drained by ClickWorker. Events are dropped when the buffer is full.
// The mutex covers the closed flag and the send together, so a Collect
// racing Close can never hit a closed channel.
type ChannelCollector struct {
	mu     sync.Mutex
	ch     chan entity.Click
	closed bool
}

func NewChannelCollector(bufferSize int) *ChannelCollector {
	return &ChannelCollector{
		ch: make(chan entity.Click, bufferSize),
	}
}

func (c *ChannelCollector) Collect(click entity.Click) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.ch <- click:
	default:
		logrus.Warnf("click buffer full, dropping event for link %s", click.LinkID)
	}
}

func (c *ChannelCollector) Events() <-chan entity.Click {
	return c.ch
}

func (c *ChannelCollector) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.ch)
}
