package daemon

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_CoalescesBurst(t *testing.T) {
	for _, n := range []int{2, 10, 1000} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			d := NewDebouncer(20 * time.Millisecond)
			defer d.Stop()

			for i := 0; i < n; i++ {
				d.Request()
			}

			passes := 0
			deadline := time.After(200 * time.Millisecond)
		loop:
			for {
				select {
				case <-d.C():
					if d.Fire() {
						passes++
					}
				case <-deadline:
					break loop
				}
			}
			assert.Equal(t, 1, passes)
			assert.False(t, d.Pending())
		})
	}
}

func TestDebouncer_RequestRestartsWindow(t *testing.T) {
	d := NewDebouncer(100 * time.Millisecond)
	defer d.Stop()

	d.Request()
	time.Sleep(60 * time.Millisecond)
	d.Request()

	select {
	case <-d.C():
		t.Fatal("debouncer fired before the restarted window elapsed")
	case <-time.After(60 * time.Millisecond):
	}

	select {
	case <-d.C():
		assert.True(t, d.Fire())
	case <-time.After(time.Second):
		t.Fatal("debouncer never fired")
	}
}

func TestDebouncer_FireWithoutRequest(t *testing.T) {
	d := NewDebouncer(0)
	assert.False(t, d.Fire())
	d.Request()
	d.Stop()
	assert.False(t, d.Pending())
	assert.False(t, d.Fire())
}

func TestDebouncer_RequestIfIdleKeepsArmedWindow(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	tick := time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()

	passes := 0
	deadline := time.After(300 * time.Millisecond)
loop:
	for {
		select {
		case <-tick.C:
			d.RequestIfIdle()
		case <-d.C():
			if d.Fire() {
				passes++
			}
		case <-deadline:
			break loop
		}
	}
	assert.GreaterOrEqual(t, passes, 2)
}
