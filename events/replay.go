package events

import (
	"context"
	"errors"
	"io"

	"github.com/adoreport/adoreport/model"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Handler receives replayed lifecycle events. *reporter.Reporter implements it.
type Handler interface {
	OnBegin(ctx context.Context)
	OnTestEnd(ctx context.Context, test model.TestCase, result model.TestResult)
	OnEnd(ctx context.Context)
}

// ReplayStats describes a finished replay.
type ReplayStats struct {
	Tests            int
	SynthesizedBegin bool
	SynthesizedEnd   bool
}

// Replay drives h with the events of src the way a test runner would:
// OnBegin runs in its own goroutine, test ends are dispatched concurrently
// (at most limit at a time, unlimited when limit <= 0) and OnEnd runs once
// OnBegin and every dispatched test end have returned. A missing begin is synthesised
// before the first test end, a missing end at the end of the stream.
// Events after the first end are ignored.
//
// A read error stops the replay early; OnEnd still runs and the error is
// returned.
func Replay(ctx context.Context, logger zerolog.Logger, h Handler, src Source, limit int) (ReplayStats, error) {
	var stats ReplayStats

	if limit <= 0 {
		limit = -1
	}
	var g errgroup.Group
	g.SetLimit(limit)

	begun := false
	beginDone := make(chan struct{})
	begin := func() {
		begun = true
		go func() {
			defer close(beginDone)
			h.OnBegin(ctx)
		}()
	}

	var readErr error
	ended := false
loop:
	for {
		if err := ctx.Err(); err != nil {
			readErr = err
			break
		}

		e, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			readErr = err
			break
		}

		switch e.Type {
		case TypeBegin:
			if begun {
				logger.Warn().Msg("Ignoring duplicate begin event")
				continue
			}
			begin()
		case TypeTestEnd:
			if !begun {
				logger.Debug().Msg("No begin event before first test, starting run")
				stats.SynthesizedBegin = true
				begin()
			}
			stats.Tests++
			test, result := e.Test, e.Result
			g.Go(func() error {
				h.OnTestEnd(ctx, test, result)
				return nil
			})
		case TypeEnd:
			ended = true
			break loop
		default:
			logger.Warn().Str("type", string(e.Type)).Msg("Ignoring unknown event")
		}
	}

	if !begun {
		stats.SynthesizedBegin = true
		begin()
	}
	if !ended {
		stats.SynthesizedEnd = true
		logger.Debug().Msg("No end event, finishing run")
	}

	_ = g.Wait()
	<-beginDone
	h.OnEnd(ctx)

	return stats, readErr
}
