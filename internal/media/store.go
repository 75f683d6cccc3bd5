// Package media stores uploaded images and returns the public reference to them.
package media

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"agora/internal/config"
	"agora/internal/models"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultMaxUploadSizeMB = 10
	MasterMaxSize          = 2048
	JPEGQuality            = 82
	WebPQuality            = 70
)

// Store persists an uploaded file for an owner (e.g. "profiles/3") and returns its reference.
type Store interface {
	Save(ctx context.Context, owner, filename string, content []byte) (string, error)
}

// LocalStore writes images under Root and serves them from URLPrefix.
// Every upload is decoded and re-encoded as a JPEG master plus a WebP sibling,
// which strips metadata and bounds dimensions.
type LocalStore struct {
	Root           string
	URLPrefix      string
	MaxUploadBytes int64
}

// NewLocalStore builds a LocalStore from MEDIA_ROOT, MEDIA_URL and MEDIA_MAX_UPLOAD_MB.
func NewLocalStore(cfg *config.Config) *LocalStore {
	maxMB := DefaultMaxUploadSizeMB
	root, prefix := "./media", "/media"
	if cfg != nil {
		if cfg.MediaMaxUploadMB > 0 {
			maxMB = cfg.MediaMaxUploadMB
		}
		if cfg.MediaRoot != "" {
			root = cfg.MediaRoot
		}
		if cfg.MediaURL != "" {
			prefix = cfg.MediaURL
		}
	}
	return &LocalStore{
		Root:           root,
		URLPrefix:      strings.TrimRight(prefix, "/"),
		MaxUploadBytes: int64(maxMB) * 1024 * 1024,
	}
}

func (s *LocalStore) Save(ctx context.Context, owner, filename string, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}
	if s.MaxUploadBytes > 0 && int64(len(content)) > s.MaxUploadBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.MaxUploadBytes/(1024*1024)))
	}
	if !isAllowedImageMIME(http.DetectContentType(content)) {
		return "", models.NewValidationError("Invalid image type")
	}
	if !isSafeOwner(owner) {
		return "", models.NewValidationError("Invalid upload owner")
	}

	decoded, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}
	master := resizeToFit(decoded, MasterMaxSize, MasterMaxSize)

	jpgBytes, err := encodeJPEG(master, JPEGQuality)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	webpBytes, err := encodeWebP(master, WebPQuality)
	if err != nil {
		return "", models.NewInternalError(err)
	}

	hash := contentHash(owner, jpgBytes)
	dir := filepath.Join(s.Root, filepath.FromSlash(owner))
	jpgPath := filepath.Join(dir, hash+".jpg")
	if err := writeBytesToFile(jpgPath, jpgBytes); err != nil {
		return "", models.NewInternalError(err)
	}
	if err := writeBytesToFile(filepath.Join(dir, hash+".webp"), webpBytes); err != nil {
		_ = os.Remove(jpgPath)
		return "", models.NewInternalError(err)
	}

	return s.URLPrefix + "/" + path.Join(owner, hash+".jpg"), nil
}

func isSafeOwner(owner string) bool {
	if owner == "" || strings.HasPrefix(owner, "/") {
		return false
	}
	for _, part := range strings.Split(owner, "/") {
		if part == "" || part == "." || part == ".." {
			return false
		}
	}
	return true
}

func isAllowedImageMIME(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	scale := 1.0
	if w > maxWidth || h > maxHeight {
		scale = min(float64(maxWidth)/float64(w), float64(maxHeight)/float64(h))
	}
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	// Always redraw into RGBA so paletted and YCbCr sources encode the same way.
	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func contentHash(owner string, content []byte) string {
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "%s:", owner)
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))[:32]
}

func writeBytesToFile(p string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o600)
}
