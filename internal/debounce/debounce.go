// Package debounce は「最後の入力から一定時間待って1回だけ実行する」遅延タスク。
package debounce

import (
	"sync"
	"time"
)

// Debouncer は取り消し可能な遅延タスクを1つだけ保持する。
// Trigger のたびに前のタスクは取り消され、新しいタスクが予約される。
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending func()
	gen     uint64
}

func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// 前のタスクを取り消して fn を予約
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cancelLocked()
	d.gen++
	gen := d.gen
	d.pending = fn

	if d.delay <= 0 {
		// 待ち時間なしでも別goroutineで実行する（呼び出し側のロックと競合させない）
		d.timer = time.AfterFunc(0, func() { d.fire(gen) })
		return
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Flush は予約中のタスクを今すぐ実行する。実行したら true。
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	fn := d.pending
	d.cancelLocked()
	d.mu.Unlock()

	if fn == nil {
		return false
	}
	fn()
	return true
}

// Stop は予約中のタスクを取り消す。取り消したら true。
func (d *Debouncer) Stop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	had := d.pending != nil
	d.cancelLocked()
	return had
}

func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// タイマーが既に発火していても gen が変わっていれば実行されない
func (d *Debouncer) cancelLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
	d.gen++
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.pending == nil {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	fn()
}
