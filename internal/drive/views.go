package drive

import (
	"time"

	"github.com/mwantia/godrive/pkg/db/models"
)

// RootFolder is the folder reference used by callers for "no parent folder".
const RootFolder = "root"

// folderRef turns a caller supplied folder reference into a nullable id.
func folderRef(ref string) *string {
	if ref == "" || ref == RootFolder {
		return nil
	}
	return &ref
}

func sameFolder(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// FolderView is the transport-safe projection of a folder.
type FolderView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ParentID  *string   `json:"parentId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FileView is the transport-safe projection of a file; the storage filename,
// object key and bucket are never exposed.
type FileView struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	Category     string    `json:"category"`
	Size         int64     `json:"size"`
	FolderID     *string   `json:"folderId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type FolderNode struct {
	FolderView
	Children []*FolderNode `json:"children"`
}

type FolderContents struct {
	Folder  *FolderView     `json:"folder"` // nil for root
	Folders []FolderView    `json:"folders"`
	Files   *Page[FileView] `json:"files"`
}

type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// Paging bounds the page size accepted from callers.
type Paging struct {
	DefaultLimit int
	MaxLimit     int
}

func (p Paging) normalize(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = p.DefaultLimit
	}
	if p.MaxLimit > 0 && limit > p.MaxLimit {
		limit = p.MaxLimit
	}
	return page, limit
}

func newPage[T any](items []T, total int64, page, limit int) *Page[T] {
	if items == nil {
		items = []T{}
	}

	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}

	return &Page[T]{
		Items: items,
		Pagination: Pagination{
			Total:      total,
			Page:       page,
			PageSize:   limit,
			TotalPages: totalPages,
		},
	}
}

func toFolderView(f *models.Folder) FolderView {
	return FolderView{
		ID:        f.ID,
		Name:      f.Name,
		ParentID:  f.ParentID,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

func toFolderViews(folders []models.Folder) []FolderView {
	views := make([]FolderView, 0, len(folders))
	for i := range folders {
		views = append(views, toFolderView(&folders[i]))
	}
	return views
}

func toFileView(f *models.File) FileView {
	return FileView{
		ID:           f.ID,
		OriginalName: f.OriginalName,
		MimeType:     f.MimeType,
		Category:     CategoryOf(f.MimeType),
		Size:         f.Size,
		FolderID:     f.FolderID,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

func toFileViews(files []models.File) []FileView {
	views := make([]FileView, 0, len(files))
	for i := range files {
		views = append(views, toFileView(&files[i]))
	}
	return views
}
