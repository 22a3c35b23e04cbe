package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
)

const (
	BucketEventPosters = "event-posters"
	BucketAvatars      = "avatars"
)

// Store is the object-storage surface the handlers depend on. Uploads must
// target a fresh key and fail if the key already exists; URLs returned by
// PublicURL are plain public URLs, never signed.
type Store interface {
	Upload(key string, r io.Reader, size int64) error
	PublicURL(key string) string
	Remove(keys ...string) error
	KeyFromURL(url string) (string, bool)
}

// UploadConfig constrains accepted files.
type UploadConfig struct {
	MaxSizeBytes     int64
	AllowedMimeTypes []string
}

var DefaultImageUploadConfig = UploadConfig{
	MaxSizeBytes: 5 * 1024 * 1024, // 5MB
	AllowedMimeTypes: []string{
		"image/jpeg",
		"image/png",
		"image/gif",
		"image/webp",
	},
}

var safeExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "webp": true, "gif": true,
}

// ObjectKey builds a per-owner key: <bucket>/<owner>/<uuid>.<ext>. Unknown
// extensions fall back to jpg.
func ObjectKey(bucket, owner, filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if !safeExtensions[ext] {
		ext = "jpg"
	}
	return fmt.Sprintf("%s/%s/%s.%s", bucket, owner, uuid.New().String(), ext)
}

// UploadImage validates an uploaded image against the config and stores it
// under a fresh key in the owner's namespace, returning the public URL.
func UploadImage(store Store, fileHeader *multipart.FileHeader, bucket, owner string, configs ...UploadConfig) (string, error) {
	config := DefaultImageUploadConfig
	if len(configs) > 0 {
		config = configs[0]
	}

	if fileHeader.Size > config.MaxSizeBytes {
		return "", fmt.Errorf("file size exceeds maximum limit of %d MB", config.MaxSizeBytes/(1024*1024))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}
	mimeType := http.DetectContentType(buffer[:n])

	mimeTypeAllowed := false
	for _, allowedType := range config.AllowedMimeTypes {
		if mimeType == allowedType {
			mimeTypeAllowed = true
			break
		}
	}
	if !mimeTypeAllowed {
		return "", fmt.Errorf("invalid file type. Allowed types: %v", config.AllowedMimeTypes)
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	key := ObjectKey(bucket, owner, fileHeader.Filename)
	if err := store.Upload(key, src, fileHeader.Size); err != nil {
		return "", err
	}
	return store.PublicURL(key), nil
}
