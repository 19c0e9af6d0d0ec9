package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvents_ReaderSeesEachEventOnce(t *testing.T) {
	bus := New[int]()
	r := bus.Reader()

	bus.Send(1)
	bus.Send(2)
	assert.Equal(t, []int{1, 2}, r.Read())
	assert.Empty(t, r.Read())

	bus.Send(3)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, []int{3}, r.Read())
}

func TestEvents_LateReaderObservesCurrentBatch(t *testing.T) {
	bus := New[string]()
	bus.SendBatch([]string{"a", "b", "c"})

	// Created after the events were sent, before rotation.
	r := bus.Reader()
	assert.Equal(t, []string{"a", "b", "c"}, r.Read())
	assert.Empty(t, r.Read())
}

func TestEvents_SurviveOneUpdate(t *testing.T) {
	bus := New[int]()
	bus.Send(1)
	bus.Update()
	bus.Send(2)

	r := bus.Reader()
	assert.Equal(t, []int{1, 2}, r.Read())

	bus.Update()
	bus.Update()
	assert.Equal(t, 0, bus.Len())
	assert.Empty(t, r.Read())
	assert.Equal(t, uint64(2), bus.Sent())
}

func TestEvents_SlowReaderMissesDroppedEvents(t *testing.T) {
	bus := New[int]()
	r := bus.Reader()

	bus.Send(1)
	bus.Update()
	bus.Send(2)
	bus.Update()
	bus.Send(3)

	assert.Equal(t, []int{2, 3}, r.Read())
	assert.Equal(t, uint64(1), r.Missed())
}

func TestEvents_ReaderAtEnd(t *testing.T) {
	bus := New[int]()
	bus.Send(1)

	r := bus.ReaderAtEnd()
	assert.Empty(t, r.Read())

	bus.Send(2)
	assert.Equal(t, []int{2}, r.Read())
}

func TestEvents_ReadAcrossRotation(t *testing.T) {
	bus := New[int]()
	r := bus.Reader()

	bus.Send(1)
	assert.Equal(t, []int{1}, r.Read())
	bus.Send(2)
	bus.Update()
	bus.Send(3)

	assert.Equal(t, []int{2, 3}, r.Read())
}

func TestEvents_Clear(t *testing.T) {
	bus := New[int]()
	r := bus.Reader()
	bus.SendBatch([]int{1, 2})
	bus.Clear()

	assert.Equal(t, 0, bus.Len())
	assert.Empty(t, r.Read())

	bus.Send(3)
	assert.Equal(t, []int{3}, r.Read())
}
