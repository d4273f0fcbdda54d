package dieselrt

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"time"
)

// idleWait bounds how long the executor sleeps on an empty channel.
const idleWait = 4 * time.Millisecond

// executor owns the backend and every backend object. It runs on a single
// goroutine locked to its OS thread, from device bring-up to teardown.
type executor struct {
	cfg     Config
	log     *logger
	channel *CommandChannel
	table   *resourceTable

	platform Platform
	backend  Backend
	sched    *CommandListScheduler
	info     string

	textures map[Handle]Texture
	buffers  map[Handle]Buffer

	quit      atomic.Bool
	processed atomic.Uint64
	done      chan struct{}
}

func newExecutor(cfg Config, log *logger, channel *CommandChannel, table *resourceTable) *executor {
	return &executor{
		cfg:      cfg,
		log:      log,
		channel:  channel,
		table:    table,
		textures: make(map[Handle]Texture),
		buffers:  make(map[Handle]Buffer),
		done:     make(chan struct{}),
	}
}

// run brings the device up, reports the outcome on ready, then processes
// commands until asked to quit.
func (e *executor) run(factory PlatformFactory, ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(e.done)

	if err := e.open(factory); err != nil {
		ready <- err
		return
	}
	ready <- nil

	e.loop()
	e.teardown()
}

func (e *executor) open(factory PlatformFactory) (err error) {
	cfg := e.cfg
	cfg.LogFunc = e.log.forward
	platform, err := factory(cfg)
	if err != nil {
		return fmt.Errorf("create platform: %w", err)
	}
	defer func() {
		if err != nil {
			platform.Destroy()
		}
	}()

	devices, err := platform.PhysicalDevices()
	if err != nil {
		return fmt.Errorf("enumerate devices: %w", err)
	}
	for _, s := range RankDevices(devices) {
		e.log.infof("device %s", s)
	}
	index, err := SelectDevice(devices, e.cfg.DeviceIndex)
	if err != nil {
		return err
	}
	families, err := AssignQueueFamilies(devices[index].QueueFamilies)
	if err != nil {
		return fmt.Errorf("device %q: %w", devices[index].Name, err)
	}
	backend, err := platform.CreateBackend(index, families)
	if err != nil {
		return fmt.Errorf("open device %q: %w", devices[index].Name, err)
	}

	e.platform = platform
	e.backend = backend
	e.sched = NewCommandListScheduler(backend)
	e.info = backend.Info()
	e.log.infof("using device #%d %q, queues graphics=%d compute=%d transfer=%d",
		index, devices[index].Name, families.Graphics, families.Compute, families.Transfer)
	return nil
}

func (e *executor) loop() {
	for !e.quit.Load() {
		cmd, ok := e.channel.TryDequeue()
		if !ok {
			// Nothing queued: submit what has been recorded so far.
			if e.sched.Pending() {
				e.check(e.sched.FlushAll())
			}
			e.channel.Wait(idleWait)
			continue
		}
		e.processed.Add(1)
		e.dispatch(cmd)
	}
}

func (e *executor) teardown() {
	e.check(e.sched.FlushAll())
	if err := e.backend.WaitForIdle(); err != nil {
		e.log.errorf("wait for idle: %v", err)
	}
	for h, t := range e.textures {
		t.Release()
		delete(e.textures, h)
	}
	for h, b := range e.buffers {
		b.Release()
		delete(e.buffers, h)
	}
	e.backend.RunGarbageCollection()
	e.backend.Destroy()
	e.platform.Destroy()
	e.table.purge()
}

func (e *executor) check(err error) {
	if err != nil {
		e.log.errorf("%v", err)
	}
}

func (e *executor) dispatch(cmd command) {
	switch c := cmd.(type) {
	case createTextureCmd:
		e.createTexture(c)
	case updateTextureCmd:
		e.updateTexture(c)
	case blitTextureCmd:
		e.blitTexture(c)
	case destroyTextureCmd:
		e.destroyTexture(c.handle)
	case createBufferCmd:
		e.createBuffer(c)
	case updateBufferCmd:
		e.updateBuffer(c)
	case clearBufferCmd:
		e.clearBuffer(c)
	case destroyBufferCmd:
		e.destroyBuffer(c.handle)
	case drainCmd:
		e.drain(c)
	default:
		e.log.errorf("unknown command %T", cmd)
	}
}

func (e *executor) createTexture(c createTextureCmd) {
	desc := c.desc
	desc.normalize()
	if err := desc.Validate(); err != nil {
		e.log.errorf("texture %d %q: %v", c.handle, desc.Name, err)
		e.table.markFailed(kindTexture, c.handle)
		return
	}
	tex, err := e.backend.CreateTexture(desc)
	if err != nil {
		e.log.errorf("texture %d %q: %v", c.handle, desc.Name, err)
		e.table.markFailed(kindTexture, c.handle)
		return
	}
	e.textures[c.handle] = tex
	e.table.markReady(kindTexture, c.handle)
	if c.data != nil {
		e.writeTexture(c.handle, tex, 0, 0, c.data)
	}
}

func (e *executor) updateTexture(c updateTextureCmd) {
	tex, ok := e.textures[c.handle]
	if !ok {
		e.log.errorf("update texture %d: %v", c.handle, ErrInvalidHandle)
		return
	}
	e.writeTexture(c.handle, tex, c.mip, c.layer, c.data)
}

func (e *executor) writeTexture(h Handle, tex Texture, mip, layer uint32, data []byte) {
	desc := tex.Desc()
	if mip >= uint32(desc.MipLevels) || layer >= uint32(desc.Layers) {
		e.log.errorf("update texture %d: mip %d layer %d out of range", h, mip, layer)
		return
	}
	if want := desc.MipSize(mip); uint64(len(data)) != want {
		e.log.errorf("update texture %d: %d bytes for mip %d, want %d", h, len(data), mip, want)
		return
	}
	list, err := e.sched.Get(QueueCopy)
	if err != nil {
		e.log.errorf("update texture %d: %v", h, err)
		return
	}
	list.WriteTexture(tex, mip, layer, data)
	_, err = e.sched.AddTransferBytes(uint64(len(data)))
	e.check(err)
}

func (e *executor) blitTexture(c blitTextureCmd) {
	dst, ok := e.textures[c.dst]
	if !ok {
		e.log.errorf("blit texture %d: destination: %v", c.dst, ErrInvalidHandle)
		return
	}
	src, ok := e.textures[c.src]
	if !ok {
		e.log.errorf("blit texture %d: source %d: %v", c.dst, c.src, ErrInvalidHandle)
		return
	}
	if !dst.Desc().Flags.Has(TextureBlitDst) {
		e.log.errorf("blit texture %d: destination was not created with TextureBlitDst", c.dst)
		return
	}
	if dst.Desc().Format.IsDepth() != src.Desc().Format.IsDepth() {
		e.log.errorf("blit texture %d: cannot blit between depth and color formats", c.dst)
		return
	}
	list, err := e.sched.Get(QueueGraphics)
	if err != nil {
		e.log.errorf("blit texture %d: %v", c.dst, err)
		return
	}
	list.BlitTexture(dst, src)
}

func (e *executor) destroyTexture(h Handle) {
	if tex, ok := e.textures[h]; ok {
		tex.Release()
		delete(e.textures, h)
	}
	e.table.release(kindTexture, h)
}

func (e *executor) createBuffer(c createBufferCmd) {
	if err := c.desc.Validate(); err != nil {
		e.log.errorf("buffer %d %q: %v", c.handle, c.desc.Name, err)
		e.table.markFailed(kindBuffer, c.handle)
		return
	}
	buf, err := e.backend.CreateBuffer(c.desc)
	if err != nil {
		e.log.errorf("buffer %d %q: %v", c.handle, c.desc.Name, err)
		e.table.markFailed(kindBuffer, c.handle)
		return
	}
	e.buffers[c.handle] = buf
	e.table.markReady(kindBuffer, c.handle)
	if c.data != nil {
		e.writeBuffer(c.handle, buf, 0, c.data)
	}
}

func (e *executor) updateBuffer(c updateBufferCmd) {
	buf, ok := e.buffers[c.handle]
	if !ok {
		e.log.errorf("update buffer %d: %v", c.handle, ErrInvalidHandle)
		return
	}
	e.writeBuffer(c.handle, buf, c.offset, c.data)
}

func (e *executor) writeBuffer(h Handle, buf Buffer, offset uint64, data []byte) {
	size := buf.Desc().Size
	if offset > size || uint64(len(data)) > size-offset {
		e.log.errorf("update buffer %d: %d bytes at %d overflow size %d", h, len(data), offset, size)
		return
	}
	if len(data) == 0 {
		return
	}
	list, err := e.sched.Get(QueueCopy)
	if err != nil {
		e.log.errorf("update buffer %d: %v", h, err)
		return
	}
	list.WriteBuffer(buf, offset, data)
	_, err = e.sched.AddTransferBytes(uint64(len(data)))
	e.check(err)
}

func (e *executor) clearBuffer(c clearBufferCmd) {
	buf, ok := e.buffers[c.handle]
	if !ok {
		e.log.errorf("clear buffer %d: %v", c.handle, ErrInvalidHandle)
		return
	}
	if buf.Desc().Usage&BufferComputeWrite == 0 {
		e.log.errorf("clear buffer %d: buffer was not created with BufferComputeWrite", c.handle)
		return
	}
	list, err := e.sched.Get(QueueCompute)
	if err != nil {
		e.log.errorf("clear buffer %d: %v", c.handle, err)
		return
	}
	list.FillBuffer(buf, c.value)
}

func (e *executor) destroyBuffer(h Handle) {
	if buf, ok := e.buffers[h]; ok {
		buf.Release()
		delete(e.buffers, h)
	}
	e.table.release(kindBuffer, h)
}

func (e *executor) drain(c drainCmd) {
	if c.waitGPU {
		e.check(e.sched.FlushAll())
		if err := e.backend.WaitForIdle(); err != nil {
			e.log.errorf("wait for idle: %v", err)
		}
	}
	e.backend.RunGarbageCollection()
	c.fence.Store(true)
}
