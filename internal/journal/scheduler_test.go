package journal

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/daybook/internal/clock"
)

type countingTrigger struct {
	n atomic.Int32
}

func (c *countingTrigger) FinalizeScheduled(ctx context.Context) <-chan struct{} {
	c.n.Add(1)
	done := make(chan struct{})
	close(done)
	return done
}

func TestSchedulerFiresOnInterval(t *testing.T) {
	trig := &countingTrigger{}
	s, err := NewScheduler(trig, Schedule{Every: 10 * time.Millisecond}, nil, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(stopped)
	}()

	require.Eventually(t, func() bool { return trig.n.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestSchedulerDisabled(t *testing.T) {
	s, err := NewScheduler(&countingTrigger{}, Schedule{}, nil, nil, nil)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		s.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled scheduler should return immediately")
	}
}

func TestNextAt(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)

	now := time.Date(2024, 1, 1, 20, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2024, 1, 1, 23, 30, 0, 0, loc), NextAt(now, 23, 30, loc))

	now = time.Date(2024, 1, 1, 23, 30, 0, 0, loc)
	assert.Equal(t, time.Date(2024, 1, 2, 23, 30, 0, 0, loc), NextAt(now, 23, 30, loc))

	// 03:00 UTC on Jan 2 is 22:00 on Jan 1 in EST.
	now = time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 1, 23, 30, 0, 0, loc), NextAt(now, 23, 30, loc))
}

func TestParseAt(t *testing.T) {
	h, m, err := ParseAt("23:55")
	require.NoError(t, err)
	assert.Equal(t, 23, h)
	assert.Equal(t, 55, m)

	for _, bad := range []string{"", "24:00", "7pm", "12:60"} {
		_, _, err := ParseAt(bad)
		assert.Error(t, err, bad)
	}

	_, err = NewScheduler(&countingTrigger{}, Schedule{At: "noon"}, nil, nil, nil)
	assert.Error(t, err)
}

func TestSchedulerWaitUsesClock(t *testing.T) {
	clk := clock.Fixed(time.Date(2024, 1, 1, 21, 0, 0, 0, time.UTC))
	s, err := NewScheduler(&countingTrigger{}, Schedule{At: "21:30"}, time.UTC, clk, nil)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, s.wait())

	s, err = NewScheduler(&countingTrigger{}, Schedule{Every: time.Hour, At: "21:30"}, time.UTC, clk, nil)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, s.wait())
}
