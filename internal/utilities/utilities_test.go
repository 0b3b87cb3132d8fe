package utilities_test

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/antonio-alexander/go-employees/internal"
	"github.com/antonio-alexander/go-employees/internal/utilities"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	buffer := &bytes.Buffer{}
	logger := utilities.NewLogger(buffer)
	ctx := internal.CtxWithCorrelationId(context.TODO(), "correlation_id_logger")

	// nothing is logged until configured
	logger.Error(ctx, "unconfigured")
	assert.Empty(t, buffer.String())

	err := logger.Configure(map[string]string{"LOG_LEVEL": "info"})
	assert.Nil(t, err)

	logger.Info(ctx, "employee %d created", 1)
	assert.Contains(t, buffer.String(), "employee 1 created")
	assert.Contains(t, buffer.String(), "correlation_id_logger")
	buffer.Reset()

	logger.Debug(ctx, "filtered")
	assert.Empty(t, buffer.String())

	logger.Error(context.TODO(), "error without correlation id")
	assert.Contains(t, buffer.String(), "error without correlation id")
	assert.NotContains(t, buffer.String(), "correlation_id")
}

func TestLoggerTrace(t *testing.T) {
	buffer := &bytes.Buffer{}
	globalLevel := zerolog.GlobalLevel()
	logger := utilities.NewLogger(buffer)
	quiet := utilities.NewLogger(&bytes.Buffer{})

	err := logger.Configure(map[string]string{"LOG_LEVEL": "trace"})
	assert.Nil(t, err)
	err = quiet.Configure(map[string]string{"LOG_LEVEL": "error"})
	assert.Nil(t, err)
	assert.Equal(t, globalLevel, zerolog.GlobalLevel())

	logger.Trace(context.TODO(), "employee_read took %s", "1ms")
	assert.Contains(t, buffer.String(), "employee_read took 1ms")
	assert.Contains(t, buffer.String(), `"level":"trace"`)
	buffer.Reset()

	logger.Debug(context.TODO(), "debug message")
	assert.Contains(t, buffer.String(), `"level":"debug"`)
}

func TestCounter(t *testing.T) {
	var wg sync.WaitGroup

	counter := utilities.NewCounter()
	hit, miss := counter.Read("employee_read")
	assert.Equal(t, -1, hit)
	assert.Equal(t, -1, miss)

	for range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			counter.IncrementHit("employee_read")
		}()
		go func() {
			defer wg.Done()
			counter.IncrementMiss("employee_read")
		}()
	}
	wg.Wait()
	hit, miss = counter.Read("employee_read")
	assert.Equal(t, 10, hit)
	assert.Equal(t, 10, miss)

	cacheCounters := counter.ReadAll()
	assert.Equal(t, 10, cacheCounters.Hits["employee_read"])
	assert.Equal(t, 10, cacheCounters.Misses["employee_read"])

	counter.Reset()
	assert.Empty(t, counter.ReadAll().Hits)
}

func TestTimers(t *testing.T) {
	timers := utilities.NewTimers()

	first := timers.Start("employee_read")
	second := timers.Start("employee_read")
	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)

	elapsed := timers.Stop("employee_read", first)
	assert.GreaterOrEqual(t, int64(elapsed), int64(0))
	assert.Equal(t, int64(-1), int64(timers.Stop("employee_read", 5)))
	assert.Equal(t, int64(-1), int64(timers.Stop("employee_create", 0)))

	// only stopped timers count towards the totals
	readAll := timers.ReadAll()
	assert.Equal(t, int64(elapsed), readAll.Totals["employee_read"])
	assert.Equal(t, int64(elapsed), readAll.Averages["employee_read"])

	timers.Clear()
	assert.Empty(t, timers.ReadAll().Totals)
}
