package drive

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"sync"
	"testing"

	config "github.com/mwantia/godrive/internal/config/server"
	"github.com/mwantia/godrive/pkg/db/models"
	"github.com/mwantia/godrive/pkg/db/store"
	"github.com/mwantia/godrive/pkg/log"
	"github.com/mwantia/godrive/pkg/objectstore"
)

var errInjected = errors.New("injected failure")

// faultyObjects wraps an object store and fails selected operations on demand.
type faultyObjects struct {
	objectstore.ObjectStore

	mu         sync.Mutex
	failPut    bool
	failDelete bool
	failCopy   bool
	failKeys   map[string]bool
	puts       int
	deletes    int
	copies     int
}

func (f *faultyObjects) set(fn func(f *faultyObjects)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *faultyObjects) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	f.mu.Lock()
	f.puts++
	fail := f.failPut
	f.mu.Unlock()
	if fail {
		return errInjected
	}
	return f.ObjectStore.Put(ctx, key, r, size, contentType)
}

func (f *faultyObjects) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	f.deletes++
	fail := f.failDelete || f.failKeys[key]
	f.mu.Unlock()
	if fail {
		return errInjected
	}
	return f.ObjectStore.Delete(ctx, key)
}

func (f *faultyObjects) Copy(ctx context.Context, src, dst string) error {
	f.mu.Lock()
	f.copies++
	fail := f.failCopy
	f.mu.Unlock()
	if fail {
		return errInjected
	}
	return f.ObjectStore.Copy(ctx, src, dst)
}

// faultyMetadata fails file creation on demand.
type faultyMetadata struct {
	store.MetadataStore

	failCreateFile bool
	onCreateFile   func()
}

func (f *faultyMetadata) CreateFile(ctx context.Context, file *models.File) error {
	if f.onCreateFile != nil {
		f.onCreateFile()
	}
	if f.failCreateFile {
		return errInjected
	}
	return f.MetadataStore.CreateFile(ctx, file)
}

type testEnv struct {
	ctx      context.Context
	dir      string
	sqlite   *store.SQLiteStore
	metadata *faultyMetadata
	local    *objectstore.LocalStore
	objects  *faultyObjects
	folders  *FolderService
	files    *FileService
	logger   log.LoggerService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	sqlite, err := store.NewSQLiteStore(store.SQLiteConfig{Path: filepath.Join(dir, "godrive.db")})
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	if err := sqlite.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := sqlite.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	local, err := objectstore.NewLocalStore(filepath.Join(dir, "objects"), "godrive")
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	logger := log.NewWriterLoggerService("test", config.LogServerConfig{Level: "error"}, io.Discard)
	metadata := &faultyMetadata{MetadataStore: sqlite}
	objects := &faultyObjects{ObjectStore: local}
	paging := Paging{DefaultLimit: 20, MaxLimit: 100}

	folders := NewFolderService(metadata, paging, logger)
	files := NewFileService(metadata, objects, folders, paging, logger)

	return &testEnv{
		ctx:      ctx,
		dir:      dir,
		sqlite:   sqlite,
		metadata: metadata,
		local:    local,
		objects:  objects,
		folders:  folders,
		files:    files,
		logger:   logger,
	}
}

func (env *testEnv) mkdir(t *testing.T, owner, name, parent string) *FolderView {
	t.Helper()
	folder, err := env.folders.Create(env.ctx, owner, CreateFolderInput{Name: name, ParentID: parent})
	if err != nil {
		t.Fatalf("Create(%s): %v", name, err)
	}
	return folder
}

func (env *testEnv) upload(t *testing.T, owner, name, mimeType string, data []byte, folder string) *FileView {
	t.Helper()
	file, err := env.files.Upload(env.ctx, owner, UploadInput{
		Data:         data,
		OriginalName: name,
		MimeType:     mimeType,
		FolderID:     folder,
	})
	if err != nil {
		t.Fatalf("Upload(%s): %v", name, err)
	}
	return file
}

// row returns the raw metadata row including storage fields.
func (env *testEnv) row(t *testing.T, owner, id string) *models.File {
	t.Helper()
	file, err := env.sqlite.GetFile(env.ctx, owner, id)
	if err != nil {
		t.Fatalf("GetFile(%s): %v", id, err)
	}
	return file
}

func (env *testEnv) objectExists(key string) bool {
	r, err := env.local.Get(env.ctx, key)
	if err != nil {
		return false
	}
	r.Close()
	return true
}

// countObjects counts the regular files below the local object root.
func (env *testEnv) countObjects(t *testing.T) int {
	t.Helper()
	count := 0
	err := filepath.WalkDir(filepath.Join(env.dir, "objects"), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			count++
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("WalkDir: %v", err)
	}
	return count
}

func expectKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := KindOf(err); got != kind {
		t.Fatalf("expected %s error, got %s: %v", kind, got, err)
	}
}

func strPtr(s string) *string { return &s }
