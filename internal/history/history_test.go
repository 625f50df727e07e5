package history

import (
	"sync"
	"testing"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/retrogolib/assert"
)

func TestHistory(t *testing.T) {
	h := New(0)
	first := address.MustParse("ROM.0:$0100")
	second := address.MustParse("ROM.0:$0150")
	third := address.MustParse("ROM.1:$4000")
	fourth := address.MustParse("HRAM:$FF80")

	_, ok := h.Back()
	assert.False(t, ok)
	_, ok = h.Current()
	assert.False(t, ok)

	h.Push(first)
	h.Push(second)
	h.Push(third)
	assert.Equal(t, 3, h.Len())

	a, ok := h.Back()
	assert.True(t, ok)
	assert.Equal(t, second, a)
	a, ok = h.Back()
	assert.True(t, ok)
	assert.Equal(t, first, a)
	_, ok = h.Back()
	assert.False(t, ok)

	a, ok = h.Forward()
	assert.True(t, ok)
	assert.Equal(t, second, a)

	h.Push(fourth)
	_, ok = h.Forward()
	assert.False(t, ok)
	assert.Equal(t, 3, h.Len())

	a, ok = h.Back()
	assert.True(t, ok)
	assert.Equal(t, second, a)
}

func TestHistoryLimit(t *testing.T) {
	h := New(3)
	for i := range 5 {
		h.Push(address.New(address.ROM, 0, uint16(i)))
	}
	assert.Equal(t, 3, h.Len())

	a, ok := h.Current()
	assert.True(t, ok)
	assert.Equal(t, uint16(4), a.Offset)

	h.Back()
	a, ok = h.Back()
	assert.True(t, ok)
	assert.Equal(t, uint16(2), a.Offset)
	_, ok = h.Back()
	assert.False(t, ok)
}

func TestHistoryConcurrent(t *testing.T) {
	h := New(DefaultLimit)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				h.Push(address.New(address.ROM, 0, uint16(i*100+j)))
				h.Back()
				h.Forward()
			}
		}()
	}
	wg.Wait()
	assert.True(t, h.Len() > 0)
}
