package dieselrt

import (
	"fmt"
	"sync/atomic"
	"time"
)

// fencePollInterval is how often Flush and Finish check their fence.
const fencePollInterval = 100 * time.Microsecond

const notInitialized = "dieselrt: not initialized"

// Context is the entry point of the runtime. Producers on any goroutine
// enqueue resource commands, a single execution goroutine applies them to
// the device.
type Context struct {
	cfg     Config
	log     *logger
	table   *resourceTable
	channel *CommandChannel
	exec    *executor

	running atomic.Bool
	info    atomic.Pointer[string]
}

// Open brings up the platform returned by factory on a dedicated execution
// goroutine and returns once the device is ready or bring-up failed.
func Open(cfg Config, factory PlatformFactory) (*Context, error) {
	log := newLogger(cfg.LogFunc)
	c, err := open(cfg, factory, log)
	if err != nil {
		log.errorf("init: %v", err)
		return nil, err
	}
	return c, nil
}

// Init is Open for programs that cannot continue without a device: any
// bring-up failure is logged and the process exits.
func Init(cfg Config, factory PlatformFactory) *Context {
	log := newLogger(cfg.LogFunc)
	c, err := open(cfg, factory, log)
	if err != nil {
		log.fatal(err)
		return nil
	}
	return c
}

func open(cfg Config, factory PlatformFactory, log *logger) (*Context, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("dieselrt: config: %w", err)
	}
	c := &Context{
		cfg:     cfg,
		log:     log,
		table:   newResourceTable(cfg.MaxTextures, cfg.MaxBuffers),
		channel: NewCommandChannel(cfg.ChannelCapacity),
	}
	c.exec = newExecutor(cfg, c.log, c.channel, c.table)

	ready := make(chan error, 1)
	go c.exec.run(factory, ready)
	if err := <-ready; err != nil {
		<-c.exec.done
		return nil, err
	}

	info := c.exec.info
	c.info.Store(&info)
	c.running.Store(true)
	return c, nil
}

// Shutdown stops the execution goroutine, waits for the device to go idle
// and destroys every remaining resource. It is safe to call more than once.
func (c *Context) Shutdown() {
	if c == nil || !c.running.Swap(false) {
		return
	}
	c.channel.Close()
	c.exec.quit.Store(true)
	<-c.exec.done
	c.info.Store(nil)
	c.log.infof("shutdown after %d commands", c.exec.processed.Load())
}

// DeviceInfo describes the opened device.
func (c *Context) DeviceInfo() string {
	if c == nil {
		return notInitialized
	}
	if p := c.info.Load(); p != nil {
		return *p
	}
	return notInitialized
}

// Flush blocks until every command enqueued before it has been handled and
// completed backend objects have been collected.
func (c *Context) Flush() error {
	return c.drain(false)
}

// Finish is Flush that additionally submits all recorded work and waits
// for the device to go idle.
func (c *Context) Finish() error {
	return c.drain(true)
}

func (c *Context) drain(waitGPU bool) error {
	if c == nil || !c.running.Load() {
		return ErrNotInitialized
	}
	var fence atomic.Bool
	if err := c.channel.Enqueue(drainCmd{fence: &fence, waitGPU: waitGPU}); err != nil {
		return err
	}
	for !fence.Load() {
		select {
		case <-c.exec.done:
			return ErrClosed
		default:
		}
		time.Sleep(fencePollInterval)
	}
	return nil
}

// ErrorCount is the number of errors logged by this context.
func (c *Context) ErrorCount() int64 {
	return c.log.errors.Load()
}

// Stats is a point-in-time snapshot of the context.
type Stats struct {
	LiveTextures int
	LiveBuffers  int
	Processed    uint64
	Submissions  uint64
	Errors       int64
}

func (c *Context) Stats() Stats {
	return Stats{
		LiveTextures: c.table.live(kindTexture),
		LiveBuffers:  c.table.live(kindBuffer),
		Processed:    c.exec.processed.Load(),
		Submissions:  c.exec.sched.Submissions(),
		Errors:       c.ErrorCount(),
	}
}

func (c *Context) enqueue(op string, cmd command) bool {
	if !c.running.Load() {
		c.log.errorf("%s: %v", op, ErrNotInitialized)
		return false
	}
	if err := c.channel.Enqueue(cmd); err != nil {
		c.log.errorf("%s: %v", op, err)
		return false
	}
	return true
}
