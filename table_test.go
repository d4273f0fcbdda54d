package dieselrt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResourceTableLifecycle(t *testing.T) {
	tbl := newResourceTable(4, 4)

	h := tbl.reserve(kindTexture)
	require.True(t, h.IsValid())
	require.True(t, tbl.usable(kindTexture, h))
	require.False(t, tbl.valid(kindTexture, h))

	tbl.markReady(kindTexture, h)
	require.True(t, tbl.valid(kindTexture, h))
	require.False(t, tbl.valid(kindBuffer, h), "kinds have separate handle spaces")

	require.True(t, tbl.retire(kindTexture, h))
	require.False(t, tbl.retire(kindTexture, h), "double destroy")
	require.False(t, tbl.usable(kindTexture, h))

	tbl.release(kindTexture, h)
	require.Equal(t, 0, tbl.live(kindTexture))
	require.Equal(t, h, tbl.reserve(kindTexture), "released handle is reused")
}

func TestResourceTableFailedCanBeDestroyed(t *testing.T) {
	tbl := newResourceTable(1, 1)
	h := tbl.reserve(kindBuffer)
	tbl.markFailed(kindBuffer, h)
	require.False(t, tbl.valid(kindBuffer, h))
	require.False(t, tbl.usable(kindBuffer, h))
	require.Equal(t, InvalidHandle, tbl.reserve(kindBuffer), "failed handles stay allocated")

	require.True(t, tbl.retire(kindBuffer, h))
	tbl.release(kindBuffer, h)
	require.True(t, tbl.reserve(kindBuffer).IsValid())
}

func TestResourceTableRetireBeforeCreateHandled(t *testing.T) {
	for _, outcome := range []struct {
		name   string
		settle func(*resourceTable, resourceKind, Handle)
	}{
		{"ready", (*resourceTable).markReady},
		{"failed", (*resourceTable).markFailed},
	} {
		t.Run(outcome.name, func(t *testing.T) {
			tbl := newResourceTable(1, 1)
			h := tbl.reserve(kindTexture)
			require.True(t, tbl.retire(kindTexture, h))

			outcome.settle(tbl, kindTexture, h)
			require.False(t, tbl.valid(kindTexture, h))
			require.False(t, tbl.usable(kindTexture, h))

			tbl.release(kindTexture, h)
			require.Equal(t, 0, tbl.live(kindTexture))
			require.Equal(t, h, tbl.reserve(kindTexture))
		})
	}
}

func TestResourceTableReleaseIgnoresUnretired(t *testing.T) {
	tbl := newResourceTable(2, 2)
	h := tbl.reserve(kindTexture)
	tbl.release(kindTexture, h)
	require.Equal(t, 1, tbl.live(kindTexture))
	require.False(t, tbl.retire(kindTexture, Handle(1)))
}

func TestResourceTablePurge(t *testing.T) {
	tbl := newResourceTable(2, 2)
	tbl.reserve(kindTexture)
	tbl.reserve(kindBuffer)
	tbl.purge()
	require.Equal(t, 0, tbl.live(kindTexture))
	require.Equal(t, 0, tbl.live(kindBuffer))
	require.Equal(t, Handle(0), tbl.reserve(kindTexture))
}
