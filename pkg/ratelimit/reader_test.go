package ratelimit

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"
)

func TestNewLimiter(t *testing.T) {
	t.Run("ValidBytesPerSecond", func(t *testing.T) {
		limiter := NewLimiter(1024 * 1024)
		if limiter == nil {
			t.Fatal("NewLimiter() returned nil for valid input")
		}
		if limiter.bytesPerSecond != 1024*1024 {
			t.Errorf("bytesPerSecond = %d, want %d", limiter.bytesPerSecond, 1024*1024)
		}
	})

	t.Run("ZeroBytesPerSecond", func(t *testing.T) {
		if NewLimiter(0) != nil {
			t.Error("NewLimiter(0) should return nil (no limiting)")
		}
	})

	t.Run("NegativeBytesPerSecond", func(t *testing.T) {
		if NewLimiter(-100) != nil {
			t.Error("NewLimiter(-100) should return nil (no limiting)")
		}
	})

	t.Run("SmallRateGetsBucketFloor", func(t *testing.T) {
		limiter := NewLimiter(1000)
		if limiter.bucketSize < 65536 {
			t.Errorf("bucketSize = %d, want at least 65536", limiter.bucketSize)
		}
	})

	t.Run("LargeRateGetsOneSecondBucket", func(t *testing.T) {
		limiter := NewLimiter(100 * 1024 * 1024)
		if limiter.bucketSize != 100*1024*1024 {
			t.Errorf("bucketSize = %d, want %d", limiter.bucketSize, 100*1024*1024)
		}
	})

	t.Run("BucketStartsFull", func(t *testing.T) {
		limiter := NewLimiter(1024 * 1024)
		if limiter.tokens != limiter.bucketSize {
			t.Errorf("initial tokens = %d, want %d", limiter.tokens, limiter.bucketSize)
		}
	})
}

func TestNewReader(t *testing.T) {
	t.Run("NilLimiterReturnsOriginal", func(t *testing.T) {
		baseReader := strings.NewReader("test content")
		if got := NewReader(baseReader, nil); got != baseReader {
			t.Error("NewReader() should return the original reader when limiter is nil")
		}
	})

	t.Run("WithLimiterWraps", func(t *testing.T) {
		baseReader := strings.NewReader("test content")
		got := NewReader(baseReader, NewLimiter(1024*1024))
		if got == baseReader {
			t.Error("NewReader() should wrap the reader when a limiter is provided")
		}
	})
}

func TestReaderPreservesContent(t *testing.T) {
	content := []byte("0123456789abcdef")
	reader := NewReader(bytes.NewReader(content), NewLimiter(1024*1024))

	var result []byte
	buf := make([]byte, 4)
	for {
		n, err := reader.Read(buf)
		if n > 0 {
			result = append(result, buf[:n]...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
	}

	if !bytes.Equal(result, content) {
		t.Errorf("accumulated = %q, want %q", result, content)
	}
}

func TestLimiterDelaysAfterBucketDrain(t *testing.T) {
	// Drain the 64KB floor bucket, then read more; the extra bytes must
	// wait for refill.
	limiter := NewLimiter(1024) // 1 KB/s, bucket floor 64KB
	limiter.take(limiter.bucketSize)

	start := time.Now()
	limiter.take(64)
	elapsed := time.Since(start)

	if elapsed < 10*time.Millisecond {
		t.Errorf("drained bucket should delay, elapsed %v", elapsed)
	}
}

func TestLimiterSharedAcrossReaders(t *testing.T) {
	limiter := NewLimiter(1024 * 1024)
	a := NewReader(strings.NewReader("aaaa"), limiter)
	b := NewReader(strings.NewReader("bbbb"), limiter)

	buf := make([]byte, 8)
	if _, err := a.Read(buf); err != nil && err != io.EOF {
		t.Fatalf("Read() error = %v", err)
	}
	if _, err := b.Read(buf); err != nil && err != io.EOF {
		t.Fatalf("Read() error = %v", err)
	}

	if limiter.tokens >= limiter.bucketSize {
		t.Error("shared limiter should have consumed tokens from both readers")
	}
}
