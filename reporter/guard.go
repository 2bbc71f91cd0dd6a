package reporter

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Guard is a latch that permanently disables publishing once tripped.
// Every pipeline component checks it before doing remote work.
type Guard struct {
	logger  zerolog.Logger
	tripped atomic.Bool
	once    sync.Once
	done    chan struct{}

	mu     sync.Mutex
	reason string
}

func NewGuard(logger zerolog.Logger) *Guard {
	return &Guard{
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Trip disables publishing and emits reason as a warning. Only the first
// call has an effect; it reports whether this call was the one that tripped.
func (g *Guard) Trip(reason string) bool {
	tripped := g.disable(reason)
	if tripped {
		g.logger.Warn().Msg(reason)
	}
	return tripped
}

// disable trips the guard without emitting anything.
func (g *Guard) disable(reason string) bool {
	tripped := false
	g.once.Do(func() {
		g.mu.Lock()
		g.reason = reason
		g.mu.Unlock()
		g.tripped.Store(true)
		close(g.done)
		tripped = true
	})
	return tripped
}

func (g *Guard) Tripped() bool {
	return g.tripped.Load()
}

// Done is closed when the guard trips.
func (g *Guard) Done() <-chan struct{} {
	return g.done
}

func (g *Guard) Reason() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reason
}
