package dieselrt

import (
	"runtime"
	"sync/atomic"
	"time"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"
)

// enqueueSpins is how many non-blocking attempts a producer makes, yielding
// between them, before it falls back to waiting for space.
const enqueueSpins = 16

// CommandChannel is a bounded multi-producer single-consumer queue of
// commands. Any goroutine may enqueue, only the executor dequeues.
type CommandChannel struct {
	q lfq.Queue[command]
	// wake holds at most one pending notification for a waiting consumer.
	wake   chan struct{}
	closed atomic.Bool
}

// NewCommandChannel rounds capacity up to a power of two.
func NewCommandChannel(capacity int) *CommandChannel {
	return &CommandChannel{
		q:    lfq.BuildMPSC[command](lfq.New(capacity).SingleConsumer().Compact()),
		wake: make(chan struct{}, 1),
	}
}

// Enqueue inserts cmd, waiting for space when the channel is full. It fails
// only once the channel is closed.
func (c *CommandChannel) Enqueue(cmd command) error {
	for i := 0; i < enqueueSpins; i++ {
		if c.closed.Load() {
			return ErrClosed
		}
		err := c.q.Enqueue(&cmd)
		if err == nil {
			c.notify()
			return nil
		}
		if !lfq.IsWouldBlock(err) {
			return err
		}
		runtime.Gosched()
	}

	backoff := iox.Backoff{}
	for {
		if c.closed.Load() {
			return ErrClosed
		}
		err := c.q.Enqueue(&cmd)
		if err == nil {
			c.notify()
			return nil
		}
		if !lfq.IsWouldBlock(err) {
			return err
		}
		backoff.Wait()
	}
}

func (c *CommandChannel) notify() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// TryDequeue returns the oldest command without blocking.
func (c *CommandChannel) TryDequeue() (command, bool) {
	cmd, err := c.q.Dequeue()
	if err != nil {
		return nil, false
	}
	return cmd, true
}

// Wait blocks until a producer enqueues or timeout elapses.
func (c *CommandChannel) Wait(timeout time.Duration) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-c.wake:
	case <-timer.C:
	}
}

// Dequeue is TryDequeue followed by at most one bounded wait.
func (c *CommandChannel) Dequeue(timeout time.Duration) (command, bool) {
	if cmd, ok := c.TryDequeue(); ok {
		return cmd, true
	}
	c.Wait(timeout)
	return c.TryDequeue()
}

// Close rejects further enqueues. Commands already queued stay dequeueable.
func (c *CommandChannel) Close() {
	if c.closed.Swap(true) {
		return
	}
	if d, ok := c.q.(lfq.Drainer); ok {
		d.Drain()
	}
	c.notify()
}

func (c *CommandChannel) Closed() bool {
	return c.closed.Load()
}
