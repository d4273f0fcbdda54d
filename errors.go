package dieselrt

import "errors"

var (
	// ErrNoSuitableDevice means no enumerated GPU passed the suitability gate.
	ErrNoSuitableDevice = errors.New("dieselrt: no suitable physical device")
	// ErrNoGraphicsQueue means the device exposes no family with graphics and compute.
	ErrNoGraphicsQueue = errors.New("dieselrt: no graphics+compute queue family")
	// ErrDeviceIndexOutOfRange is returned for an explicit device index past the enumerated list.
	ErrDeviceIndexOutOfRange = errors.New("dieselrt: device index out of range")
	// ErrNotInitialized is returned when operating on a context that is not running.
	ErrNotInitialized = errors.New("dieselrt: not initialized")
	// ErrClosed is returned when enqueueing after shutdown.
	ErrClosed = errors.New("dieselrt: command channel closed")
	// ErrInvalidTexture reports a texture descriptor that cannot be created.
	ErrInvalidTexture = errors.New("dieselrt: invalid texture descriptor")
	// ErrInvalidBuffer reports a buffer descriptor that cannot be created.
	ErrInvalidBuffer = errors.New("dieselrt: invalid buffer descriptor")
	// ErrInvalidHandle reports an operation on a handle that is not live.
	ErrInvalidHandle = errors.New("dieselrt: invalid handle")
	// ErrHandlesExhausted is returned when the handle pool has no free ids.
	ErrHandlesExhausted = errors.New("dieselrt: handle pool exhausted")
)
