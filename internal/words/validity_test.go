package words

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDictionary struct {
	words map[string]bool
	err   error
	delay time.Duration
	calls atomic.Int32
}

func (f *fakeDictionary) Lookup(ctx context.Context, word string) (bool, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	if f.err != nil {
		return false, f.err
	}
	return f.words[word], nil
}

func TestCheckerKnownWordsSkipLookup(t *testing.T) {
	dict := &fakeDictionary{}
	c := NewChecker(nil, dict)
	c.Register("frog")

	assert.True(t, c.IsValidWord(context.Background(), 4, " Frog "))
	assert.Zero(t, dict.calls.Load())
	assert.False(t, c.IsValidWord(context.Background(), 4, ""))
}

func TestCheckerCachesLookups(t *testing.T) {
	dict := &fakeDictionary{words: map[string]bool{"BEAR": true}}
	c := NewChecker(nil, dict)
	ctx := context.Background()

	assert.True(t, c.IsValidWord(ctx, 4, "bear"))
	assert.True(t, c.IsValidWord(ctx, 4, "BEAR"))
	assert.True(t, c.Known().Has(4, "BEAR"))

	assert.False(t, c.IsValidWord(ctx, 4, "QZXV"))
	assert.False(t, c.IsValidWord(ctx, 4, "qzxv"))
	v, ok := c.Cached("QZXV")
	assert.True(t, ok)
	assert.False(t, v)

	assert.Equal(t, int32(2), dict.calls.Load())
}

func TestCheckerAcceptsOnTransportFailure(t *testing.T) {
	dict := &fakeDictionary{err: errors.New("dial tcp: timeout")}
	c := NewChecker(nil, dict)
	ctx := context.Background()

	assert.True(t, c.IsValidWord(ctx, 5, "ZZZZZ"))
	_, ok := c.Cached("ZZZZZ")
	assert.False(t, ok, "transport failures are not cached")
	assert.False(t, c.Known().Has(5, "ZZZZZ"))

	assert.True(t, c.IsValidWord(ctx, 5, "ZZZZZ"))
	assert.Equal(t, int32(2), dict.calls.Load())
}

func TestCheckerWithoutDictionary(t *testing.T) {
	c := NewChecker(NewKnownWords(), nil)
	assert.True(t, c.IsValidWord(context.Background(), 3, "XYZ"))
}

func TestCheckerCoalescesConcurrentLookups(t *testing.T) {
	dict := &fakeDictionary{words: map[string]bool{"PLANT": true}, delay: 50 * time.Millisecond}
	c := NewChecker(nil, dict)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, c.IsValidWord(context.Background(), 5, "plant"))
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, dict.calls.Load(), int32(8))
	assert.GreaterOrEqual(t, dict.calls.Load(), int32(1))
	assert.True(t, c.Known().Has(5, "PLANT"))
}

func TestCheckerLookupOutlivesFirstCaller(t *testing.T) {
	dict := &fakeDictionary{words: map[string]bool{}, delay: 100 * time.Millisecond}
	c := NewChecker(nil, dict)
	first, cancel := context.WithCancel(context.Background())

	firstDone := make(chan bool, 1)
	go func() { firstDone <- c.IsValidWord(first, 5, "QXZVB") }()
	require.Eventually(t, func() bool { return dict.calls.Load() == 1 }, time.Second, time.Millisecond)

	secondDone := make(chan bool, 1)
	go func() { secondDone <- c.IsValidWord(context.Background(), 5, "QXZVB") }()
	time.Sleep(10 * time.Millisecond)
	cancel()

	assert.False(t, <-secondDone, "a made-up word stays rejected")
	assert.False(t, <-firstDone)
	v, ok := c.Cached("QXZVB")
	assert.True(t, ok)
	assert.False(t, v)
	assert.Equal(t, int32(1), dict.calls.Load())
}

func TestPoolPick(t *testing.T) {
	pool := Pool{Puzzles: mustFallback(t).Puzzles(5)}

	a, ok := pool.Pick("1700000000", "salt")
	assert.True(t, ok)
	b, _ := pool.Pick("1700000000", "salt")
	assert.Equal(t, a, b, "same seed, same word")

	r, ok := pool.Pick("", "salt")
	assert.True(t, ok)
	assert.Len(t, r.Word, 5)

	_, ok = Pool{}.Pick("", "")
	assert.False(t, ok)

	a.Hints[0] = "mutated"
	c, _ := pool.Pick("1700000000", "salt")
	assert.NotEqual(t, "mutated", c.Hints[0])
}

func TestDailySeed(t *testing.T) {
	late := time.Date(2026, 3, 1, 23, 30, 0, 0, time.FixedZone("EST", -5*3600))
	assert.Equal(t, "daily:2026-03-02", DailySeed(late))
	assert.Equal(t, DailySeed(late), DailySeed(late.Add(20*time.Minute)))
}
