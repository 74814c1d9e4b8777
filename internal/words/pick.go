package words

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"math/big"
	"time"

	"github.com/wordbuddy/puzzle-server/internal/game"
)

// Pick draws a puzzle from the pool. With an empty seed the draw is uniformly
// random; with a seed it is HMAC(salt, seed) % size, so the same seed replays
// the same word for a given pool.
func (p Pool) Pick(seed, salt string) (game.Puzzle, bool) {
	n := len(p.Puzzles)
	if n == 0 {
		return game.Puzzle{}, false
	}
	i := randomIndex(n)
	if seed != "" {
		i = seededIndex(seed, salt, n)
	}
	src := p.Puzzles[i]
	return game.Puzzle{Word: src.Word, Hints: append([]string(nil), src.Hints...)}, true
}

// DailySeed is the seed shared by everyone on the same UTC day.
func DailySeed(t time.Time) string {
	return "daily:" + t.UTC().Format("2006-01-02")
}

// seededIndex maps seed to 0..n-1 using the first 8 bytes of HMAC-SHA256.
func seededIndex(seed, salt string, n int) int {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(seed))
	sum := h.Sum(nil)
	return int(binary.BigEndian.Uint64(sum[:8]) % uint64(n))
}

// randomIndex returns a crypto-random index in 0..n-1.
func randomIndex(n int) int {
	if n <= 1 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}
