package store

import (
	"context"

	"github.com/mwantia/godrive/pkg/db/models"
)

// MetadataStore defines the interface for database operations.
// Every folder and file lookup is scoped by owner id.
type MetadataStore interface {
	// Lifecycle
	Connect(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error
	Health(ctx context.Context) error

	// Folder operations
	CreateFolder(ctx context.Context, folder *models.Folder) error
	GetFolder(ctx context.Context, ownerID, id string) (*models.Folder, error)
	ListFolders(ctx context.Context, query FolderQuery) ([]models.Folder, int64, error)
	ListOwnerFolders(ctx context.Context, ownerID string) ([]models.Folder, error)
	CountSiblingFolders(ctx context.Context, ownerID string, parentID *string, name, excludeID string) (int64, error)
	CountChildFolders(ctx context.Context, ownerID, id string) (int64, error)
	UpdateFolder(ctx context.Context, folder *models.Folder) error
	DeleteFolder(ctx context.Context, ownerID, id string) error

	// File operations
	CreateFile(ctx context.Context, file *models.File) error
	GetFile(ctx context.Context, ownerID, id string) (*models.File, error)
	GetFiles(ctx context.Context, ownerID string, ids []string) ([]models.File, error)
	ListFiles(ctx context.Context, query FileQuery) ([]models.File, int64, error)
	CountFolderFiles(ctx context.Context, ownerID, folderID string) (int64, error)
	GetFileUsage(ctx context.Context, ownerID string) ([]MimeUsage, error)
	UpdateFile(ctx context.Context, file *models.File) error
	DeleteFile(ctx context.Context, ownerID, id string) error

	// Share operations
	CreateShare(ctx context.Context, share *models.Share) error
	GetFileShares(ctx context.Context, fileID string) ([]models.Share, error)
	DeleteFileShares(ctx context.Context, fileID string) error

	// Orphan object operations
	CreateOrphanObject(ctx context.Context, orphan *models.OrphanObject) error
	ListOrphanObjects(ctx context.Context, bucket string, limit int) ([]models.OrphanObject, error)
	UpdateOrphanObject(ctx context.Context, orphan *models.OrphanObject) error
	DeleteOrphanObject(ctx context.Context, id uint) error
}
