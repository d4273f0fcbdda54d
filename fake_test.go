package dieselrt

import (
	"errors"
	"fmt"
	"sync"
)

var errFakeDevice = errors.New("fake device failure")

type fakePlatform struct {
	devices   []PhysicalDeviceInfo
	probeErr  error
	backend   *fakeBackend
	opened    int
	families  QueueFamilyAssignment
	destroyed bool
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		devices: []PhysicalDeviceInfo{suitableDevice("fake gpu", DeviceTypeDiscreteGPU)},
		backend: newFakeBackend(),
		opened:  -1,
	}
}

func (p *fakePlatform) factory() PlatformFactory {
	return func(Config) (Platform, error) { return p, nil }
}

func (p *fakePlatform) PhysicalDevices() ([]PhysicalDeviceInfo, error) {
	return p.devices, p.probeErr
}

func (p *fakePlatform) CreateBackend(index int, families QueueFamilyAssignment) (Backend, error) {
	p.opened = index
	p.families = families
	return p.backend, nil
}

func (p *fakePlatform) Destroy() { p.destroyed = true }

type fakeSubmit struct {
	queue QueueType
	id    uint64
	ops   []string
}

type fakeWait struct {
	consumer, producer QueueType
	id                 uint64
}

type fakeBackend struct {
	mu           sync.Mutex
	nextID       uint64
	submits      []fakeSubmit
	waits        []fakeWait
	liveTextures int
	liveBuffers  int
	gcRuns       int
	idleWaits    int
	destroyed    bool
	failCreate   bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{}
}

func (b *fakeBackend) CreateCommandList(t QueueType) (CommandList, error) {
	return &fakeList{queue: t}, nil
}

func (b *fakeBackend) ExecuteCommandList(list CommandList, t QueueType) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.submits = append(b.submits, fakeSubmit{queue: t, id: b.nextID, ops: list.(*fakeList).ops})
	return b.nextID
}

func (b *fakeBackend) QueueWaitForCommandList(consumer, producer QueueType, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.waits = append(b.waits, fakeWait{consumer: consumer, producer: producer, id: id})
}

func (b *fakeBackend) CreateTexture(desc TextureDesc) (Texture, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failCreate {
		return nil, errFakeDevice
	}
	b.liveTextures++
	return &fakeTexture{desc: desc, b: b}, nil
}

func (b *fakeBackend) CreateBuffer(desc BufferDesc) (Buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failCreate {
		return nil, errFakeDevice
	}
	b.liveBuffers++
	return &fakeBuffer{desc: desc, b: b}, nil
}

func (b *fakeBackend) RunGarbageCollection() {
	b.mu.Lock()
	b.gcRuns++
	b.mu.Unlock()
}

func (b *fakeBackend) WaitForIdle() error {
	b.mu.Lock()
	b.idleWaits++
	b.mu.Unlock()
	return nil
}

func (b *fakeBackend) Info() string { return "fake backend" }

func (b *fakeBackend) Destroy() {
	b.mu.Lock()
	b.destroyed = true
	b.mu.Unlock()
}

func (b *fakeBackend) snapshot() (submits []fakeSubmit, waits []fakeWait) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]fakeSubmit(nil), b.submits...), append([]fakeWait(nil), b.waits...)
}

func (b *fakeBackend) live() (textures, buffers int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.liveTextures, b.liveBuffers
}

type fakeList struct {
	queue QueueType
	open  bool
	ops   []string
}

func (l *fakeList) Open() error {
	l.open = true
	return nil
}

func (l *fakeList) Close() error {
	if !l.open {
		return errors.New("list not open")
	}
	l.open = false
	return nil
}

func (l *fakeList) WriteBuffer(dst Buffer, offset uint64, data []byte) {
	l.ops = append(l.ops, fmt.Sprintf("write-buffer %s@%d+%d", dst.Desc().Name, offset, len(data)))
}

func (l *fakeList) WriteTexture(dst Texture, mip, layer uint32, data []byte) {
	l.ops = append(l.ops, fmt.Sprintf("write-texture %s mip%d layer%d +%d", dst.Desc().Name, mip, layer, len(data)))
}

func (l *fakeList) FillBuffer(dst Buffer, value uint32) {
	l.ops = append(l.ops, fmt.Sprintf("fill %s=%d", dst.Desc().Name, value))
}

func (l *fakeList) BlitTexture(dst, src Texture) {
	l.ops = append(l.ops, fmt.Sprintf("blit %s<-%s", dst.Desc().Name, src.Desc().Name))
}

type fakeTexture struct {
	desc TextureDesc
	b    *fakeBackend
}

func (t *fakeTexture) Desc() TextureDesc { return t.desc }

func (t *fakeTexture) Release() {
	t.b.mu.Lock()
	t.b.liveTextures--
	t.b.mu.Unlock()
}

type fakeBuffer struct {
	desc BufferDesc
	b    *fakeBackend
}

func (f *fakeBuffer) Desc() BufferDesc { return f.desc }

func (f *fakeBuffer) Release() {
	f.b.mu.Lock()
	f.b.liveBuffers--
	f.b.mu.Unlock()
}
