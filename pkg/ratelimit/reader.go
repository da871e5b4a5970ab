// Package ratelimit provides token-bucket bandwidth limiting for readers.
// Hashing whole artifact trees on network filesystems can saturate a link;
// wrapping the hash reader keeps sync checks polite.
package ratelimit

import (
	"io"
	"sync"
	"time"
)

// Limiter controls the aggregate read rate across any number of readers
type Limiter struct {
	bytesPerSecond int64

	mu         sync.Mutex
	tokens     int64
	bucketSize int64
	lastUpdate time.Time
}

// NewLimiter creates a limiter for the given bytes-per-second rate.
// A non-positive rate returns nil, which means no limiting.
func NewLimiter(bytesPerSecond int64) *Limiter {
	if bytesPerSecond <= 0 {
		return nil
	}

	// Allow bursts of one second of traffic, with a 64KB floor so small
	// buffers do not stall.
	bucketSize := bytesPerSecond
	if bucketSize < 65536 {
		bucketSize = 65536
	}

	return &Limiter{
		bytesPerSecond: bytesPerSecond,
		tokens:         bucketSize,
		bucketSize:     bucketSize,
		lastUpdate:     time.Now(),
	}
}

// take blocks until n tokens are available, then consumes them
func (l *Limiter) take(n int64) {
	for {
		l.mu.Lock()

		now := time.Now()
		elapsed := now.Sub(l.lastUpdate)
		l.lastUpdate = now

		l.tokens += int64(elapsed.Seconds() * float64(l.bytesPerSecond))
		if l.tokens > l.bucketSize {
			l.tokens = l.bucketSize
		}

		if l.tokens >= n {
			l.tokens -= n
			l.mu.Unlock()
			return
		}

		deficit := n - l.tokens
		l.mu.Unlock()

		wait := time.Duration(float64(deficit) / float64(l.bytesPerSecond) * float64(time.Second))
		if wait < time.Millisecond {
			wait = time.Millisecond
		}
		time.Sleep(wait)
	}
}

// reader wraps an io.Reader with a shared limiter
type reader struct {
	inner   io.Reader
	limiter *Limiter
}

// NewReader wraps r with rate limiting. A nil limiter returns r unchanged.
func NewReader(r io.Reader, limiter *Limiter) io.Reader {
	if limiter == nil {
		return r
	}
	return &reader{inner: r, limiter: limiter}
}

// Read consumes tokens for every byte actually read
func (r *reader) Read(p []byte) (int, error) {
	n, err := r.inner.Read(p)
	if n > 0 {
		r.limiter.take(int64(n))
	}
	return n, err
}
