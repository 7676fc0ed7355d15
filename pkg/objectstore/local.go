package objectstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps objects as plain files below <dataDir>/<bucket>.
type LocalStore struct {
	dataDir string
	bucket  string
}

func NewLocalStore(dataDir, bucket string) (*LocalStore, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("local storage path is required")
	}
	if bucket == "" || strings.ContainsAny(bucket, `/\`) || bucket == "." || bucket == ".." {
		return nil, fmt.Errorf("invalid bucket name '%s'", bucket)
	}

	s := &LocalStore{dataDir: dataDir, bucket: bucket}
	if err := os.MkdirAll(s.bucketPath(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create bucket directory: %w", err)
	}

	return s, nil
}

func (s *LocalStore) Bucket() string {
	return s.bucket
}

func (s *LocalStore) bucketPath() string {
	return filepath.Join(s.dataDir, s.bucket)
}

// objectPath resolves key below the bucket directory and rejects traversal.
func (s *LocalStore) objectPath(key string) (string, error) {
	if key == "" || strings.Contains(key, "\x00") {
		return "", fmt.Errorf("invalid key")
	}

	absBucket, err := filepath.Abs(s.bucketPath())
	if err != nil {
		return "", err
	}
	absResolved, err := filepath.Abs(filepath.Join(absBucket, filepath.FromSlash(key)))
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(absResolved, absBucket+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid key")
	}

	return absResolved, nil
}

func (s *LocalStore) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.objectPath(key)
	if err != nil {
		return err
	}
	return s.writeFile(path, reader)
}

// writeFile streams into a temporary file and renames it into place.
func (s *LocalStore) writeFile(path string, reader io.Reader) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tempFile, err := os.CreateTemp(dir, ".godrive-tmp-*")
	if err != nil {
		return err
	}
	tempPath := tempFile.Name()

	if _, err := io.Copy(tempFile, reader); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return err
	}

	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return err
	}

	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return err
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return err
	}

	return nil
}

func (s *LocalStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.objectPath(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, ErrObjectNotFound
	}
	return file, err
}

func (s *LocalStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.objectPath(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}

	// Clean up empty parent directories up to the bucket root
	bucketPath, err := filepath.Abs(s.bucketPath())
	if err != nil {
		return nil
	}
	dir := filepath.Dir(path)
	for dir != bucketPath && strings.HasPrefix(dir, bucketPath) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			break
		}
		os.Remove(dir)
		dir = filepath.Dir(dir)
	}

	return nil
}

func (s *LocalStore) Copy(ctx context.Context, srcKey, dstKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	srcPath, err := s.objectPath(srcKey)
	if err != nil {
		return err
	}
	dstPath, err := s.objectPath(dstKey)
	if err != nil {
		return err
	}

	src, err := os.Open(srcPath)
	if os.IsNotExist(err) {
		return ErrObjectNotFound
	}
	if err != nil {
		return err
	}
	defer src.Close()

	return s.writeFile(dstPath, src)
}

func (s *LocalStore) Close() error {
	return nil
}
