package utilities

import (
	"sync"
	"time"

	"github.com/antonio-alexander/go-employees/internal/data"
)

const pending time.Duration = -1

type timers struct {
	sync.Mutex
	started map[string][]time.Time
	elapsed map[string][]time.Duration
}

// Timers measures elapsed time per group (e.g. per endpoint); Start returns
// the index to hand back to Stop.
type Timers interface {
	Start(group string) int
	Stop(group string, index int) time.Duration
	ReadAll() *data.Timers
	Clear()
}

func NewTimers() Timers {
	t := &timers{}
	t.Clear()
	return t
}

func (t *timers) Clear() {
	t.Lock()
	defer t.Unlock()

	t.started = make(map[string][]time.Time)
	t.elapsed = make(map[string][]time.Duration)
}

func (t *timers) Start(group string) int {
	t.Lock()
	defer t.Unlock()

	t.started[group] = append(t.started[group], time.Now())
	t.elapsed[group] = append(t.elapsed[group], pending)
	return len(t.started[group]) - 1
}

// Stop returns -1 if the timer doesn't exist (e.g. it was cleared)
func (t *timers) Stop(group string, index int) time.Duration {
	t.Lock()
	defer t.Unlock()

	started := t.started[group]
	if index < 0 || index >= len(started) {
		return pending
	}
	elapsed := time.Since(started[index])
	t.elapsed[group][index] = elapsed
	return elapsed
}

func (t *timers) ReadAll() *data.Timers {
	t.Lock()
	defer t.Unlock()

	readAll := &data.Timers{
		Totals:   make(map[string]int64, len(t.elapsed)),
		Averages: make(map[string]int64, len(t.elapsed)),
	}
	for group, durations := range t.elapsed {
		var total time.Duration
		var n int64

		for _, elapsed := range durations {
			if elapsed == pending {
				continue
			}
			total += elapsed
			n++
		}
		readAll.Totals[group] = int64(total)
		if n > 0 {
			readAll.Averages[group] = int64(total) / n
		}
	}
	return readAll
}
