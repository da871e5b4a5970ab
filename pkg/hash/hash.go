// Package hash provides content hashing for change and drift detection.
//
// Artifact trees are compared by SHA-256 content hashes so that repeated
// convergence checks stay cheap: two trees with equal hashes never need a
// full diff. The package provides a streaming implementation backed by
// crypto/sha256 and a fake implementation for tests.
package hash

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sync"
)

// ReaderWrapper wraps a reader, e.g. for bandwidth limiting
type ReaderWrapper func(io.Reader) io.Reader

// Hasher provides an abstraction for file hashing operations
type Hasher interface {
	// HashFile computes the content hash of the file at the given path
	HashFile(ctx context.Context, path string) (string, error)
}

// SHA256Hasher implements Hasher using streaming SHA-256
type SHA256Hasher struct {
	bufferSize    int
	bufferPool    *sync.Pool
	readerWrapper ReaderWrapper
}

// NewSHA256Hasher creates a new SHA256Hasher with the given buffer size
func NewSHA256Hasher(bufferSize int) *SHA256Hasher {
	if bufferSize < 4096 {
		bufferSize = 4096
	}
	return &SHA256Hasher{
		bufferSize: bufferSize,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
	}
}

// SetReaderWrapper sets a function to wrap readers (e.g., for rate limiting)
func (h *SHA256Hasher) SetReaderWrapper(wrapper ReaderWrapper) {
	h.readerWrapper = wrapper
}

// HashFile computes the SHA-256 hash of a file using streaming reads
func (h *SHA256Hasher) HashFile(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file
	if h.readerWrapper != nil {
		reader = h.readerWrapper(file)
	}

	hasher := sha256.New()

	bufPtr := h.bufferPool.Get().(*[]byte)
	buffer := *bufPtr
	defer h.bufferPool.Put(bufPtr)

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		n, err := reader.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// HashBytes computes the SHA-256 hash of an in-memory payload
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// FakeHasher implements Hasher with predetermined hashes for testing
type FakeHasher struct {
	mu     sync.Mutex
	hashes map[string]string
}

// NewFakeHasher creates a new FakeHasher
func NewFakeHasher() *FakeHasher {
	return &FakeHasher{hashes: make(map[string]string)}
}

// SetHash sets the hash returned for a specific path
func (h *FakeHasher) SetHash(path, hash string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hashes[path] = hash
}

// HashFile returns the predetermined hash for the given path
func (h *FakeHasher) HashFile(ctx context.Context, path string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if hash, ok := h.hashes[path]; ok {
		return hash, nil
	}
	return "fakehash", nil
}
