package window

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLiveFeed_EmptyRead(t *testing.T) {
	var f LiveFeed[Point]

	_, ok := f.Read()
	assert.False(t, ok)
	assert.False(t, f.HasNew())
}

func TestLiveFeed_ReadClearsFlag(t *testing.T) {
	var f LiveFeed[Point]
	f.Add(Point{X: 1, Y: 5})

	assert.True(t, f.HasNew())
	v, ok := f.Read()
	assert.True(t, ok)
	assert.Equal(t, Point{X: 1, Y: 5}, v)

	// Second read with no intervening Add is a no-op
	_, ok = f.Read()
	assert.False(t, ok)
	assert.False(t, f.HasNew())
}

func TestLiveFeed_LatestWins(t *testing.T) {
	var f LiveFeed[Point]
	f.Add(Point{X: 1})
	f.Add(Point{X: 2})

	v, ok := f.Read()
	assert.True(t, ok)
	assert.Equal(t, 2.0, v.X)
}

func TestLiveFeed_ConcurrentWriterReader(t *testing.T) {
	var f LiveFeed[int]
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= 1000; i++ {
			f.Add(i)
		}
	}()

	last := 0
	for i := 0; i < 1000; i++ {
		if v, ok := f.Read(); ok {
			assert.Greater(t, v, last)
			last = v
		}
	}
	wg.Wait()

	if v, ok := f.Read(); ok {
		assert.Equal(t, 1000, v)
	}
}
