package drive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mwantia/godrive/pkg/db/models"
	"github.com/mwantia/godrive/pkg/db/store"
	"github.com/mwantia/godrive/pkg/log"
	"github.com/mwantia/godrive/pkg/objectstore"
	"gorm.io/gorm"
)

// FileService owns the lifecycle of stored files. Every object store write is
// followed by its metadata write, never the other way around.
type FileService struct {
	store   store.MetadataStore
	objects objectstore.ObjectStore
	folders *FolderService
	paging  Paging
	now     func() time.Time
	log     log.LoggerService
}

type FileFilter struct {
	Search string
	// FolderID limits the result to one folder; RootFolder selects files without
	// a folder and an empty value disables the filter.
	FolderID string
	MimeType string
	Category string
	Sort     string
	Order    string

	Page  int
	Limit int
}

// UploadInput is one parsed upload. Size is optional; when set it has to match
// the length of Data. An empty MimeType is detected from the content.
type UploadInput struct {
	Data         []byte
	OriginalName string
	MimeType     string
	Size         int64
	FolderID     string
}

// Download carries an open object stream; the caller must close Stream.
type Download struct {
	Stream   io.ReadCloser
	Filename string
	MimeType string
	Size     int64
}

type BatchError struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Error string `json:"error"`
}

type UploadBatchResult struct {
	Uploaded []FileView   `json:"uploaded"`
	Errors   []BatchError `json:"errors"`
	Total    int          `json:"total"`
	Success  int          `json:"success"`
	Failed   int          `json:"failed"`
}

type DeleteBatchResult struct {
	Deleted []string     `json:"deleted"`
	Errors  []BatchError `json:"errors"`
	Total   int          `json:"total"`
	Success int          `json:"success"`
	Failed  int          `json:"failed"`
}

func NewFileService(metadata store.MetadataStore, objects objectstore.ObjectStore, folders *FolderService, paging Paging, logger log.LoggerService) *FileService {
	return &FileService{
		store:   metadata,
		objects: objects,
		folders: folders,
		paging:  paging,
		now:     time.Now,
		log:     logger.Named("files"),
	}
}

func buildFileQuery(ownerID string, filter FileFilter, paging Paging) (store.FileQuery, int, int, error) {
	page, limit := paging.normalize(filter.Page, filter.Limit)

	query := store.FileQuery{
		OwnerID:  ownerID,
		Search:   strings.TrimSpace(filter.Search),
		MimeType: strings.TrimSpace(filter.MimeType),
		Sort:     filter.Sort,
		Desc:     true,
		Limit:    limit,
		Offset:   (page - 1) * limit,
	}

	if filter.FolderID != "" {
		query.ByFolder = true
		query.FolderID = folderRef(filter.FolderID)
	}

	if filter.Category != "" {
		types, ok := CategoryMimeTypes(filter.Category)
		if !ok {
			return query, 0, 0, badRequest("unknown category '%s'", filter.Category)
		}
		query.MimeTypes = types
	}

	if _, ok := store.FileSortColumn(filter.Sort); !ok {
		return query, 0, 0, badRequest("unsupported sort field '%s'", filter.Sort)
	}

	switch strings.ToLower(filter.Order) {
	case "", "desc":
		query.Desc = true
	case "asc":
		query.Desc = false
	default:
		return query, 0, 0, badRequest("order must be 'asc' or 'desc'")
	}

	return query, page, limit, nil
}

func (s *FileService) lookup(ctx context.Context, ownerID, id string) (*models.File, error) {
	file, err := s.store.GetFile(ctx, ownerID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("file '%s'", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load file: %w", err)
	}
	return file, nil
}

func (s *FileService) List(ctx context.Context, ownerID string, filter FileFilter) (*Page[FileView], error) {
	query, page, limit, err := buildFileQuery(ownerID, filter, s.paging)
	if err != nil {
		return nil, err
	}

	files, total, err := s.store.ListFiles(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return newPage(toFileViews(files), total, page, limit), nil
}

func (s *FileService) Get(ctx context.Context, ownerID, id string) (*FileView, error) {
	file, err := s.lookup(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	view := toFileView(file)
	return &view, nil
}

// Upload stores a single file. The object is written first; without it no
// metadata row is created.
func (s *FileService) Upload(ctx context.Context, ownerID string, input UploadInput) (*FileView, error) {
	folderID := folderRef(input.FolderID)
	if err := s.folders.Ensure(ctx, ownerID, folderID); err != nil {
		return nil, err
	}

	file, err := s.upload(ctx, ownerID, folderID, input)
	if err != nil {
		return nil, err
	}
	view := toFileView(file)
	return &view, nil
}

func (s *FileService) upload(ctx context.Context, ownerID string, folderID *string, input UploadInput) (*models.File, error) {
	name, err := validateName(input.OriginalName)
	if err != nil {
		return nil, err
	}

	mimeType := baseMimeType(input.MimeType)
	if mimeType == "" {
		mimeType = detectMimeType(input.Data)
	}

	size := int64(len(input.Data))
	if input.Size > 0 && input.Size != size {
		return nil, badRequest("declared size %d does not match %d received bytes", input.Size, size)
	}

	filename := GenerateFilename(name)
	key := ObjectKey(ownerID, filename, s.now())

	if err := s.objects.Put(ctx, key, bytes.NewReader(input.Data), size, mimeType); err != nil {
		s.log.Error("Failed to store object for '%s' (owner '%s'): %v", name, ownerID, err)
		return nil, &InternalError{Op: "object upload", Err: err}
	}

	file := &models.File{
		Filename:     filename,
		OriginalName: name,
		MimeType:     mimeType,
		Size:         size,
		Path:         key,
		Bucket:       s.objects.Bucket(),
		FolderID:     folderID,
		OwnerID:      ownerID,
	}
	if err := s.store.CreateFile(ctx, file); err != nil {
		s.discardObject(ctx, key, "upload", err)
		return nil, fmt.Errorf("failed to record file metadata: %w", err)
	}

	s.log.Debug("Uploaded file '%s' (%s, %d bytes) for owner '%s'", file.OriginalName, file.ID, file.Size, ownerID)
	return file, nil
}

// UploadMultiple uploads the inputs one after another into the same folder.
// Item failures are reported in the result and never abort the batch.
func (s *FileService) UploadMultiple(ctx context.Context, ownerID, folder string, inputs []UploadInput) (*UploadBatchResult, error) {
	folderID := folderRef(folder)
	if err := s.folders.Ensure(ctx, ownerID, folderID); err != nil {
		return nil, err
	}

	result := &UploadBatchResult{
		Uploaded: []FileView{},
		Errors:   []BatchError{},
		Total:    len(inputs),
	}

	for _, input := range inputs {
		file, err := s.upload(ctx, ownerID, folderID, input)
		if err != nil {
			result.Errors = append(result.Errors, BatchError{Name: input.OriginalName, Error: err.Error()})
			continue
		}
		result.Uploaded = append(result.Uploaded, toFileView(file))
	}

	result.Success = len(result.Uploaded)
	result.Failed = len(result.Errors)

	if result.Failed > 0 {
		s.log.Warn("Batch upload for owner '%s' finished with %d of %d failures", ownerID, result.Failed, result.Total)
	}
	return result, nil
}

// Download opens the object of a file for delivery as attachment.
func (s *FileService) Download(ctx context.Context, ownerID, id string) (*Download, error) {
	file, err := s.lookup(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	stream, err := s.objects.Get(ctx, file.Path)
	if err != nil {
		s.log.Error("Failed to open object of file '%s': %v", file.ID, err)
		return nil, &InternalError{Op: "object download", Err: err}
	}

	return &Download{
		Stream:   stream,
		Filename: file.OriginalName,
		MimeType: file.MimeType,
		Size:     file.Size,
	}, nil
}

// Preview returns the same payload as Download; inline delivery is up to the caller.
func (s *FileService) Preview(ctx context.Context, ownerID, id string) (*Download, error) {
	return s.Download(ctx, ownerID, id)
}

// Rename changes the display name only.
func (s *FileService) Rename(ctx context.Context, ownerID, id, newName string) (*FileView, error) {
	name, err := validateName(newName)
	if err != nil {
		return nil, err
	}

	file, err := s.lookup(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	file.OriginalName = name
	if err := s.store.UpdateFile(ctx, file); err != nil {
		return nil, fmt.Errorf("failed to rename file: %w", err)
	}

	view := toFileView(file)
	return &view, nil
}

// Move places the file in another folder without touching the object store.
func (s *FileService) Move(ctx context.Context, ownerID, id, target string) (*FileView, error) {
	file, err := s.lookup(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	folderID := folderRef(target)
	if err := s.folders.Ensure(ctx, ownerID, folderID); err != nil {
		return nil, err
	}

	file.FolderID = folderID
	if err := s.store.UpdateFile(ctx, file); err != nil {
		return nil, fmt.Errorf("failed to move file: %w", err)
	}

	view := toFileView(file)
	return &view, nil
}

// Copy duplicates the object under a fresh key and records it as a new file.
func (s *FileService) Copy(ctx context.Context, ownerID, id, target string) (*FileView, error) {
	source, err := s.lookup(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	folderID := folderRef(target)
	if err := s.folders.Ensure(ctx, ownerID, folderID); err != nil {
		return nil, err
	}

	filename := GenerateFilename(source.OriginalName)
	key := ObjectKey(ownerID, filename, s.now())

	if err := s.objects.Copy(ctx, source.Path, key); err != nil {
		s.log.Error("Failed to copy object of file '%s': %v", source.ID, err)
		return nil, &InternalError{Op: "object copy", Err: err}
	}

	file := &models.File{
		Filename:     filename,
		OriginalName: copyName(source.OriginalName),
		MimeType:     source.MimeType,
		Size:         source.Size,
		Path:         key,
		Bucket:       s.objects.Bucket(),
		FolderID:     folderID,
		OwnerID:      ownerID,
	}
	if err := s.store.CreateFile(ctx, file); err != nil {
		s.discardObject(ctx, key, "copy", err)
		return nil, fmt.Errorf("failed to record copied file: %w", err)
	}

	view := toFileView(file)
	return &view, nil
}

// remove deletes the object, then share references, then the metadata row.
// A failing object delete keeps the metadata untouched.
func (s *FileService) remove(ctx context.Context, file *models.File) error {
	if err := s.objects.Delete(ctx, file.Path); err != nil {
		s.log.Error("Failed to delete object of file '%s': %v", file.ID, err)
		return &InternalError{Op: "object delete", Err: err}
	}

	if err := s.store.DeleteFileShares(ctx, file.ID); err != nil {
		return fmt.Errorf("failed to delete file shares: %w", err)
	}

	if err := s.store.DeleteFile(ctx, file.OwnerID, file.ID); err != nil {
		return fmt.Errorf("failed to delete file metadata: %w", err)
	}

	s.log.Debug("Deleted file '%s' (%s) for owner '%s'", file.OriginalName, file.ID, file.OwnerID)
	return nil
}

func (s *FileService) Delete(ctx context.Context, ownerID, id string) error {
	file, err := s.lookup(ctx, ownerID, id)
	if err != nil {
		return err
	}
	return s.remove(ctx, file)
}

// BatchDelete removes the given files one by one. Unknown ids and failed
// removals are collected in the result.
func (s *FileService) BatchDelete(ctx context.Context, ownerID string, ids []string) (*DeleteBatchResult, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	files, err := s.store.GetFiles(ctx, ownerID, unique)
	if err != nil {
		return nil, fmt.Errorf("failed to load files: %w", err)
	}

	found := make(map[string]*models.File, len(files))
	for i := range files {
		found[files[i].ID] = &files[i]
	}

	result := &DeleteBatchResult{
		Deleted: []string{},
		Errors:  []BatchError{},
		Total:   len(unique),
	}

	for _, id := range unique {
		file, ok := found[id]
		if !ok {
			result.Errors = append(result.Errors, BatchError{ID: id, Error: notFound("file '%s'", id).Error()})
			continue
		}
		if err := s.remove(ctx, file); err != nil {
			result.Errors = append(result.Errors, BatchError{ID: id, Name: file.OriginalName, Error: err.Error()})
			continue
		}
		result.Deleted = append(result.Deleted, id)
	}

	result.Success = len(result.Deleted)
	result.Failed = len(result.Errors)
	return result, nil
}
