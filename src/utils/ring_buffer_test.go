package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRingBuffer(t *testing.T) {
	rb := NewRingBuffer[int](3)
	assert.Equal(t, []int{}, rb.GetAll())
	assert.Equal(t, []int{}, rb.GetLatest(2))

	rb.Append(1)
	rb.Append(2)
	assert.Equal(t, []int{1, 2}, rb.GetAll())
	assert.Equal(t, []int{2, 1}, rb.GetLatest(5))
	assert.False(t, rb.IsFull())

	rb.Append(3)
	rb.Append(4)
	assert.True(t, rb.IsFull())
	assert.Equal(t, 3, rb.Size())
	assert.Equal(t, []int{2, 3, 4}, rb.GetAll())
	assert.Equal(t, []int{4, 3}, rb.GetLatest(2))

	rb.Clear()
	assert.Equal(t, 0, rb.Size())
	assert.Equal(t, 3, rb.Capacity())
}

func TestRingBuffer_DefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultHistorySize, NewRingBuffer[string](0).Capacity())
}
