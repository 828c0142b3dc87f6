package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/facebookgo/clock"
	"github.com/jedib0t/go-pretty/v6/table"
	"go.uber.org/zap"

	"github.com/lestrrat/go-admission-control/admission"
)

type simConfig struct {
	Workers      int
	Duration     int
	RPS          int
	FailureRatio float64
	IdleAfter    int
	Window       time.Duration
}

type snapshot struct {
	Second     int
	Worker     int
	Counts     admission.RequestData
	AverageRPS uint32
}

func (sc simConfig) validate() error {
	switch {
	case sc.Workers < 1:
		return errors.New("workers must be at least 1")
	case sc.Duration < 1:
		return errors.New("duration must be at least 1")
	case sc.RPS < 0:
		return errors.New("rps must not be negative")
	case sc.FailureRatio < 0 || sc.FailureRatio > 1:
		return errors.New("failure ratio must be between 0 and 1")
	}
	return nil
}

// simulate runs every worker on its own goroutine. A worker's
// controller and clock never leave that goroutine; only the snapshots
// are handed back.
func simulate(ctx context.Context, sc simConfig, logger *zap.Logger) ([]snapshot, error) {
	if err := sc.validate(); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	results := make([][]snapshot, sc.Workers)
	errs := make([]error, sc.Workers)

	var wg sync.WaitGroup
	for id := 0; id < sc.Workers; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			results[id], errs[id] = runWorker(ctx, id, sc, logger)
		}(id)
	}
	wg.Wait()

	var snaps []snapshot
	for id := range results {
		if errs[id] != nil {
			return nil, fmt.Errorf("worker %d: %w", id, errs[id])
		}
		snaps = append(snaps, results[id]...)
	}

	sort.Slice(snaps, func(i, j int) bool {
		if snaps[i].Second != snaps[j].Second {
			return snaps[i].Second < snaps[j].Second
		}
		return snaps[i].Worker < snaps[j].Worker
	})
	return snaps, nil
}

func runWorker(ctx context.Context, id int, sc simConfig, logger *zap.Logger) ([]snapshot, error) {
	clk := clock.NewMock()
	lc, err := admission.New(sc.Window, admission.WithClock(clk))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ctl := admission.NewEventEmitter(lc)
	go ctl.Emit(ctx)
	go logEvents(ctx, ctl.Subscribe(ctx), logger.With(zap.Int("worker", id)))

	var recorded, failed int
	snaps := make([]snapshot, 0, sc.Duration)
	for sec := 0; sec < sc.Duration; sec++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if sc.IdleAfter <= 0 || sec < sc.IdleAfter {
			for i := 0; i < sc.RPS; i++ {
				recorded++
				if failed < int(sc.FailureRatio*float64(recorded)) {
					failed++
					ctl.RecordFailure()
				} else {
					ctl.RecordSuccess()
				}
			}
		}

		snaps = append(snaps, snapshot{
			Second:     sec,
			Worker:     id,
			Counts:     ctl.RequestCounts(),
			AverageRPS: ctl.AverageRPS(),
		})
		clk.Add(time.Second)
	}
	return snaps, nil
}

func logEvents(ctx context.Context, s *admission.EventSubscription, logger *zap.Logger) {
	defer s.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.C:
			logger.Debug("controller event", zap.Stringer("event", ev))
		}
	}
}

func render(w io.Writer, snaps []snapshot, every int) {
	if every < 1 {
		every = 1
	}

	var last int
	for _, s := range snaps {
		if s.Second > last {
			last = s.Second
		}
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Second", "Worker", "Requests", "Successes", "Avg RPS"})
	for _, s := range snaps {
		if s.Second%every != 0 && s.Second != last {
			continue
		}
		t.AppendRow(table.Row{s.Second, s.Worker, s.Counts.Requests, s.Counts.Successes, s.AverageRPS})
	}
	t.Render()
}
