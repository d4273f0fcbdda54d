// Package dieselrt is a threaded command front-end for a GPU device.
//
// Any goroutine may create, update and destroy textures and buffers through a
// Context. Calls reserve a handle and enqueue a command; a single execution
// goroutine, locked to its OS thread, owns the device and applies commands in
// channel order. GPU work is batched into one command list per queue type
// (copy, compute, graphics) and submitted with the waits that order copy
// before compute before graphics.
//
// Errors in queued commands are reported through the log function and the
// context's error counter, not returned. Flush and Finish are the
// synchronization points: both return once every earlier command has been
// handled, Finish also waits for the device to go idle.
package dieselrt
