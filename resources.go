package dieselrt

// TextureHandle names a texture. Its id space is separate from buffers.
type TextureHandle Handle

// BufferHandle names a buffer.
type BufferHandle Handle

const (
	InvalidTexture = TextureHandle(InvalidHandle)
	InvalidBuffer  = BufferHandle(InvalidHandle)
)

func (h TextureHandle) IsValid() bool { return Handle(h).IsValid() }
func (h BufferHandle) IsValid() bool  { return Handle(h).IsValid() }

// CreateTexture reserves a handle and queues creation. Descriptor errors
// surface asynchronously through the log, after which the handle never
// becomes valid but must still be destroyed. data, if non-nil, is uploaded
// to mip 0 of layer 0 and must not be modified until the next Flush.
func (c *Context) CreateTexture(desc TextureDesc, data []byte) TextureHandle {
	h := c.table.reserve(kindTexture)
	if !h.IsValid() {
		c.log.errorf("create texture %q: %v", desc.Name, ErrHandlesExhausted)
		return InvalidTexture
	}
	if !c.enqueue("create texture", createTextureCmd{handle: h, desc: desc, data: data}) {
		c.table.retire(kindTexture, h)
		c.table.release(kindTexture, h)
		return InvalidTexture
	}
	return TextureHandle(h)
}

// UpdateTexture uploads one mip of one layer. len(data) must match the mip size.
func (c *Context) UpdateTexture(h TextureHandle, mip, layer uint32, data []byte) {
	if !c.usable(kindTexture, Handle(h), "update texture") {
		return
	}
	c.enqueue("update texture", updateTextureCmd{handle: Handle(h), mip: mip, layer: layer, data: data})
}

// BlitTexture copies src into dst with scaling. dst needs TextureBlitDst.
func (c *Context) BlitTexture(dst, src TextureHandle) {
	if !c.usable(kindTexture, Handle(dst), "blit texture") || !c.usable(kindTexture, Handle(src), "blit texture") {
		return
	}
	c.enqueue("blit texture", blitTextureCmd{dst: Handle(dst), src: Handle(src)})
}

// DestroyTexture retires h. The id is recycled once the executor has
// released the backend object.
func (c *Context) DestroyTexture(h TextureHandle) {
	c.destroy(kindTexture, Handle(h), destroyTextureCmd{handle: Handle(h)})
}

// IsTextureValid reports whether h names a successfully created texture.
func (c *Context) IsTextureValid(h TextureHandle) bool {
	return c.table.valid(kindTexture, Handle(h))
}

// CreateBuffer reserves a handle and queues creation, uploading data at
// offset 0 when non-nil.
func (c *Context) CreateBuffer(desc BufferDesc, data []byte) BufferHandle {
	h := c.table.reserve(kindBuffer)
	if !h.IsValid() {
		c.log.errorf("create buffer %q: %v", desc.Name, ErrHandlesExhausted)
		return InvalidBuffer
	}
	if !c.enqueue("create buffer", createBufferCmd{handle: h, desc: desc, data: data}) {
		c.table.retire(kindBuffer, h)
		c.table.release(kindBuffer, h)
		return InvalidBuffer
	}
	return BufferHandle(h)
}

func (c *Context) UpdateBuffer(h BufferHandle, offset uint64, data []byte) {
	if !c.usable(kindBuffer, Handle(h), "update buffer") {
		return
	}
	c.enqueue("update buffer", updateBufferCmd{handle: Handle(h), offset: offset, data: data})
}

// ClearBuffer fills the buffer with value on the compute queue. The buffer
// needs BufferComputeWrite.
func (c *Context) ClearBuffer(h BufferHandle, value uint32) {
	if !c.usable(kindBuffer, Handle(h), "clear buffer") {
		return
	}
	c.enqueue("clear buffer", clearBufferCmd{handle: Handle(h), value: value})
}

func (c *Context) DestroyBuffer(h BufferHandle) {
	c.destroy(kindBuffer, Handle(h), destroyBufferCmd{handle: Handle(h)})
}

func (c *Context) IsBufferValid(h BufferHandle) bool {
	return c.table.valid(kindBuffer, Handle(h))
}

func (c *Context) usable(kind resourceKind, h Handle, op string) bool {
	if c.table.usable(kind, h) {
		return true
	}
	c.log.errorf("%s %d: %v", op, h, ErrInvalidHandle)
	return false
}

func (c *Context) destroy(kind resourceKind, h Handle, cmd command) {
	if !c.table.retire(kind, h) {
		c.log.errorf("destroy %s %d: %v", kind, h, ErrInvalidHandle)
		return
	}
	c.enqueue("destroy "+kind.String(), cmd)
}
