// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
)

// MediaStoreStub is an in-memory media.Store for tests.
type MediaStoreStub struct {
	mu    sync.Mutex
	Files map[string][]byte
	Err   error
}

// NewMediaStoreStub creates an empty in-memory media store.
func NewMediaStoreStub() *MediaStoreStub {
	return &MediaStoreStub{Files: make(map[string][]byte)}
}

// Save records the content and returns a deterministic reference.
func (s *MediaStoreStub) Save(_ context.Context, owner, filename string, content []byte) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ref := fmt.Sprintf("/media/%s/%d-%s", owner, len(s.Files)+1, filename)
	s.Files[ref] = content
	return ref, nil
}

// PNG returns a small valid PNG image for upload tests.
func PNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: uint8(x % 256), B: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}
