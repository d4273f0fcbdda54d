package vkbackend

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReleaseWaitsForRecordingList(t *testing.T) {
	var r releaseTracker
	released := 0
	list := &commandList{}

	r.begin(list)
	r.add(4, func() { released++ })

	r.collect(10)
	require.Zero(t, released, "a recording list may still reference the object")

	r.end(list, 7)
	r.collect(6)
	require.Zero(t, released, "submission 7 has not completed")

	r.collect(7)
	require.Equal(t, 1, released)
	r.collect(100)
	require.Equal(t, 1, released)
}

func TestReleaseAfterEmptyList(t *testing.T) {
	var r releaseTracker
	released := false
	list := &commandList{}

	r.begin(list)
	r.add(3, func() { released = true })
	r.end(list, 0)

	r.collect(3)
	require.True(t, released, "a list that produced no submission holds nothing back")
}

func TestReleaseIgnoresLaterLists(t *testing.T) {
	var r releaseTracker
	released := false
	early, late := &commandList{}, &commandList{}

	r.begin(early)
	r.add(2, func() { released = true })
	r.begin(late)

	r.end(early, 3)
	r.collect(3)
	require.True(t, released, "lists opened after the release cannot reference the object")
	r.end(late, 4)
}

func TestReleaseWithoutRecordingLists(t *testing.T) {
	var r releaseTracker
	released := 0
	r.add(5, func() { released++ })
	r.collect(4)
	require.Zero(t, released)
	r.collect(5)
	require.Equal(t, 1, released)

	r.add(5, func() { released++ })
	r.releaseAll()
	require.Equal(t, 2, released)
}
