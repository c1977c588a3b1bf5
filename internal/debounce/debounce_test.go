package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// 連続入力は最後の1回にまとめられる
func TestDebouncer_CoalescesRapidTriggers(t *testing.T) {
	d := New(30 * time.Millisecond)

	var calls int32
	var last atomic.Value
	done := make(chan struct{}, 1)

	for _, term := range []string{"s", "sh", "sho", "shoe"} {
		term := term
		d.Trigger(func() {
			atomic.AddInt32(&calls, 1)
			last.Store(term)
			done <- struct{}{}
		})
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debounced task did not run")
	}

	// 取り消されたタスクが後から走らないこと
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, "shoe", last.Load())
	assert.False(t, d.Pending())
}

func TestDebouncer_FlushRunsPendingImmediately(t *testing.T) {
	d := New(time.Hour)

	ran := false
	d.Trigger(func() { ran = true })
	assert.True(t, d.Pending())

	assert.True(t, d.Flush())
	assert.True(t, ran)
	assert.False(t, d.Pending())

	// 2回目は何もしない
	assert.False(t, d.Flush())
}

func TestDebouncer_StopCancels(t *testing.T) {
	d := New(10 * time.Millisecond)

	var calls int32
	d.Trigger(func() { atomic.AddInt32(&calls, 1) })

	assert.True(t, d.Stop())
	assert.False(t, d.Stop())

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestDebouncer_ZeroDelayStillAsync(t *testing.T) {
	d := New(0)

	done := make(chan struct{})
	d.Trigger(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}
}
