package dieselrt

import "sync/atomic"

// command is one unit of work for the executor. Variants are plain values
// carrying only what their handler needs.
type command interface {
	isCommand()
}

type createTextureCmd struct {
	handle Handle
	desc   TextureDesc
	data   []byte
}

type updateTextureCmd struct {
	handle     Handle
	mip, layer uint32
	data       []byte
}

type blitTextureCmd struct {
	dst, src Handle
}

type destroyTextureCmd struct {
	handle Handle
}

type createBufferCmd struct {
	handle Handle
	desc   BufferDesc
	data   []byte
}

type updateBufferCmd struct {
	handle Handle
	offset uint64
	data   []byte
}

type clearBufferCmd struct {
	handle Handle
	value  uint32
}

type destroyBufferCmd struct {
	handle Handle
}

// drainCmd signals fence once every earlier command has been handled.
// With waitGPU the executor also submits all lists and waits for idle.
type drainCmd struct {
	fence   *atomic.Bool
	waitGPU bool
}

func (createTextureCmd) isCommand()  {}
func (updateTextureCmd) isCommand()  {}
func (blitTextureCmd) isCommand()    {}
func (destroyTextureCmd) isCommand() {}
func (createBufferCmd) isCommand()   {}
func (updateBufferCmd) isCommand()   {}
func (clearBufferCmd) isCommand()    {}
func (destroyBufferCmd) isCommand()  {}
func (drainCmd) isCommand()          {}
