package reporter

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// PublicationKey identifies an in-flight publication.
type PublicationKey struct {
	CaseID string
	TestID string
	Title  string
}

func (k PublicationKey) String() string {
	return k.CaseID + " - " + k.Title
}

// Publication is the handle of one enqueued publication.
type Publication struct {
	key  PublicationKey
	c    *Coordinator
	once sync.Once
}

func (p *Publication) Key() PublicationKey {
	return p.key
}

// Done removes the publication from the pending set. Calling it more than once is a no-op.
func (p *Publication) Done() {
	p.once.Do(func() {
		p.c.Dequeue(p.key)
	})
}

// Coordinator tracks in-flight publications and lets the end of the run
// wait for them. Identical keys are counted, so two tests that share a
// title and case id do not release each other.
type Coordinator struct {
	logger zerolog.Logger

	mu      sync.Mutex
	pending map[PublicationKey]int
	count   int
	changed chan struct{}
}

func NewCoordinator(logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		logger:  logger,
		pending: make(map[PublicationKey]int),
		changed: make(chan struct{}),
	}
}

// Enqueue adds key to the pending set.
func (c *Coordinator) Enqueue(key PublicationKey) *Publication {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending[key]++
	c.count++
	c.notifyLocked()
	return &Publication{key: key, c: c}
}

// Dequeue removes one occurrence of key. It reports false when key was not pending.
func (c *Coordinator) Dequeue(key PublicationKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.pending[key]
	if !ok {
		return false
	}
	if n <= 1 {
		delete(c.pending, key)
	} else {
		c.pending[key] = n - 1
	}
	c.count--
	c.notifyLocked()
	return true
}

// Pending returns the number of in-flight publications.
func (c *Coordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

func (c *Coordinator) notifyLocked() {
	close(c.changed)
	c.changed = make(chan struct{})
}

// Drain blocks until no publication is pending or ctx ends. There is no
// internal deadline: a publication that never finishes blocks Drain until
// ctx is cancelled.
func (c *Coordinator) Drain(ctx context.Context) error {
	last := -1
	for {
		c.mu.Lock()
		n := c.count
		changed := c.changed
		c.mu.Unlock()

		if n == 0 {
			return nil
		}
		if n != last {
			c.logger.Info().Int("remaining", n).
				Msgf("Waiting for all results to be published. Remaining %d results", n)
			last = n
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return fmt.Errorf("%d results still pending: %w", n, ctx.Err())
		}
	}
}
