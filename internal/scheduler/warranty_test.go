package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweeper struct {
	count int
	err   error
	days  []time.Time
}

func (f *fakeSweeper) SweepExpired(_ context.Context, today time.Time) (int, error) {
	f.days = append(f.days, today)
	return f.count, f.err
}

func TestStartWarrantySweepDisabled(t *testing.T) {
	c, err := StartWarrantySweep(Disabled, &fakeSweeper{})
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestStartWarrantySweepRejectsBadSchedule(t *testing.T) {
	_, err := StartWarrantySweep("every tuesday", &fakeSweeper{})
	assert.Error(t, err)
}

func TestStartWarrantySweepSchedules(t *testing.T) {
	c, err := StartWarrantySweep("0 1 * * *", &fakeSweeper{})
	require.NoError(t, err)
	require.NotNil(t, c)
	defer c.Stop()

	assert.Len(t, c.Entries(), 1)
}

func TestRunWarrantySweep(t *testing.T) {
	now := time.Date(2026, 3, 4, 1, 0, 0, 0, time.UTC)
	sweeper := &fakeSweeper{count: 3}

	assert.Equal(t, 3, RunWarrantySweep(sweeper, func() time.Time { return now }))
	require.Len(t, sweeper.days, 1)
	assert.Equal(t, now, sweeper.days[0])
}

func TestRunWarrantySweepReportsZeroOnError(t *testing.T) {
	sweeper := &fakeSweeper{count: 7, err: errors.New("db down")}

	assert.Equal(t, 0, RunWarrantySweep(sweeper, time.Now))
}
