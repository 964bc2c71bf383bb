package app

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduler_Fires(t *testing.T) {
	s := NewScheduler[string]()
	var fired atomic.Int32

	s.Schedule("room", 10*time.Millisecond, func() { fired.Add(1) })

	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return s.Pending() == 0 }, time.Second, 5*time.Millisecond)
}

func TestScheduler_RescheduleReplaces(t *testing.T) {
	s := NewScheduler[string]()
	var first, second atomic.Int32

	s.Schedule("room", 30*time.Millisecond, func() { first.Add(1) })
	s.Schedule("room", 10*time.Millisecond, func() { second.Add(1) })

	assert.Eventually(t, func() bool { return second.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), first.Load())
}

func TestScheduler_Cancel(t *testing.T) {
	s := NewScheduler[string]()
	var fired atomic.Int32

	s.Schedule("room", 20*time.Millisecond, func() { fired.Add(1) })
	assert.True(t, s.Cancel("room"))
	assert.False(t, s.Cancel("room"))

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestScheduler_StopAll(t *testing.T) {
	s := NewScheduler[int]()
	var fired atomic.Int32
	for i := range 3 {
		s.Schedule(i, 20*time.Millisecond, func() { fired.Add(1) })
	}
	assert.Equal(t, 3, s.Pending())

	s.StopAll()

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
	assert.Equal(t, 0, s.Pending())
}
