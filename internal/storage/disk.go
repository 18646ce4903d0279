package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder

	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
)

const (
	originalName = "original"
	previewName  = "preview.webp"

	PreviewMaxSize = 1080
	WebPQuality    = 70
)

// DiskStore stores blobs under root/<uuid>/. The original upload is written
// on Create; the WebP preview is derived lazily on the first ViewURL call,
// which makes ViewURL the step that can fail after a successful upload.
type DiskStore struct {
	root     string
	baseURL  string
	maxBytes int64
}

// NewDiskStore returns a DiskStore rooted at dir. baseURL is the public
// path prefix media is served under (e.g. "/media").
func NewDiskStore(dir, baseURL string, maxUploadSizeMB int) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create media dir: %w", err)
	}
	return &DiskStore{
		root:     dir,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		maxBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}, nil
}

// Create validates and persists an uploaded image, returning its opaque id.
func (s *DiskStore) Create(_ context.Context, filename string, content []byte) (string, error) {
	if len(content) == 0 {
		return "", ErrInvalidImage
	}
	if int64(len(content)) > s.maxBytes {
		return "", fmt.Errorf("%w (max %dMB)", ErrBlobTooLarge, s.maxBytes/(1024*1024))
	}

	detectedType := http.DetectContentType(content)
	if !isAllowedImageMIME(detectedType) {
		return "", ErrInvalidImage
	}
	if _, format, err := image.Decode(bytes.NewReader(content)); err != nil || !isSupportedFormat(format) {
		return "", ErrInvalidImage
	}

	id := uuid.NewString()
	ext := extensionFor(detectedType, filename)
	path := filepath.Join(s.root, id, originalName+ext)
	if err := writeBytesToFile(path, content); err != nil {
		return "", err
	}
	return id, nil
}

// ViewURL returns the public URL of the blob's preview, deriving the preview
// file if it does not exist yet.
func (s *DiskStore) ViewURL(_ context.Context, id string) (string, error) {
	if !isValidBlobID(id) {
		return "", ErrBlobNotFound
	}

	previewPath := filepath.Join(s.root, id, previewName)
	if _, err := os.Stat(previewPath); err == nil {
		return s.publicURL(id, previewName), nil
	}

	originalPath, err := s.findOriginal(id)
	if err != nil {
		return "", err
	}

	// #nosec G304: originalPath is built from a validated UUID
	f, err := os.Open(originalPath)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	src, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("failed to decode stored blob %s: %w", id, err)
	}

	preview := resizeToFit(src, PreviewMaxSize, PreviewMaxSize)
	encoded, err := encodeWebP(preview, WebPQuality)
	if err != nil {
		return "", fmt.Errorf("failed to derive preview for blob %s: %w", id, err)
	}
	if err := writeBytesToFile(previewPath, encoded); err != nil {
		return "", err
	}

	return s.publicURL(id, previewName), nil
}

// Delete removes the blob directory, original and derived files alike.
// Deleting an unknown id is not an error.
func (s *DiskStore) Delete(_ context.Context, id string) error {
	if !isValidBlobID(id) {
		return ErrBlobNotFound
	}
	return os.RemoveAll(filepath.Join(s.root, id))
}

// Resolve maps a blob id and file name to a path on disk for serving.
func (s *DiskStore) Resolve(id, name string) (string, error) {
	if !isValidBlobID(id) {
		return "", ErrBlobNotFound
	}
	if name != previewName && !strings.HasPrefix(name, originalName+".") {
		return "", ErrBlobNotFound
	}
	path := filepath.Join(s.root, id, name)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", ErrBlobNotFound
		}
		return "", err
	}
	return path, nil
}

func (s *DiskStore) publicURL(id, name string) string {
	return fmt.Sprintf("%s/f/%s/%s", s.baseURL, id, name)
}

func (s *DiskStore) findOriginal(id string) (string, error) {
	dir := filepath.Join(s.root, id)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrBlobNotFound
		}
		return "", err
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), originalName+".") {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", ErrBlobNotFound
}

// isValidBlobID requires a canonical UUID string. This prevents path
// traversal via crafted ids.
func isValidBlobID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}

func extensionFor(contentType, filename string) string {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		return ext
	}
	return ".bin"
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg", "png", "gif", "webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func writeBytesToFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
