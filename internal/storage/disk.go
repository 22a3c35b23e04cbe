package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore keeps blobs on the local filesystem under a root directory and
// serves them from a public URL prefix. Keys map directly onto relative paths.
type DiskStore struct {
	root         string
	publicPrefix string
}

func NewDiskStore(root, publicPrefix string) *DiskStore {
	return &DiskStore{
		root:         root,
		publicPrefix: strings.TrimSuffix(publicPrefix, "/"),
	}
}

// Upload writes the blob at key. It fails if the key already exists: poster
// replacement always targets a fresh key, never an overwrite.
func (s *DiskStore) Upload(key string, r io.Reader, size int64) error {
	fullPath := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), os.ModePerm); err != nil {
		return err
	}

	dst, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("object already exists at key %s", key)
		}
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(fullPath)
		return err
	}
	return nil
}

func (s *DiskStore) PublicURL(key string) string {
	return s.publicPrefix + "/" + key
}

func (s *DiskStore) Remove(keys ...string) error {
	var firstErr error
	for _, key := range keys {
		if err := os.Remove(filepath.Join(s.root, filepath.FromSlash(key))); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// KeyFromURL inverts PublicURL. URLs that do not point into this store
// (absolute URLs from elsewhere, foreign prefixes) report ok=false so callers
// skip cleanup rather than delete something they don't own.
func (s *DiskStore) KeyFromURL(url string) (string, bool) {
	marker := s.publicPrefix + "/"
	idx := strings.Index(url, marker)
	if idx < 0 {
		return "", false
	}
	key := url[idx+len(marker):]
	if key == "" || strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}
