package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/mwantia/godrive/pkg/db/migrations"
	"github.com/mwantia/godrive/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLiteStore implements MetadataStore using SQLite
type SQLiteStore struct {
	db   *gorm.DB
	path string
}

// DB returns the underlying GORM database instance
func (s *SQLiteStore) DB() *gorm.DB {
	return s.db
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	Path         string
	MaxOpenConns int
	LogLevel     logger.LogLevel
}

// ParseLogLevel maps a configured gorm log level name, defaulting to silent.
func ParseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "error":
		return logger.Error
	case "warn", "warning":
		return logger.Warn
	case "info":
		return logger.Info
	}
	return logger.Silent
}

// NewSQLiteStore creates a new SQLite-backed metadata store
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	// Default to silent logging
	if cfg.LogLevel == 0 {
		cfg.LogLevel = logger.Silent
	}

	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: logger.Default.LogMode(cfg.LogLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	return &SQLiteStore{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Connect initializes the database connection
func (s *SQLiteStore) Connect(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(1) // SQLite only supports 1 writer
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}

// Migrate runs all pending versioned migrations
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := migrations.NewMigrator(s.db).Migrate(ctx)
	return err
}

// Health checks database connectivity
func (s *SQLiteStore) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// scopeNullable matches a nullable id column; nil selects rows where the column is NULL.
func scopeNullable(query *gorm.DB, column string, id *string) *gorm.DB {
	if id == nil {
		return query.Where(column + " IS NULL")
	}
	return query.Where(column+" = ?", *id)
}

// Folder operations

func (s *SQLiteStore) CreateFolder(ctx context.Context, folder *models.Folder) error {
	return s.db.WithContext(ctx).Create(folder).Error
}

func (s *SQLiteStore) GetFolder(ctx context.Context, ownerID, id string) (*models.Folder, error) {
	var folder models.Folder
	err := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&folder).Error
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

func (s *SQLiteStore) foldersQuery(ctx context.Context, query FolderQuery) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Folder{}).Where("owner_id = ?", query.OwnerID)

	if query.ByParent {
		q = scopeNullable(q, "parent_id", query.ParentID)
	}
	if query.Name != "" {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, containsPattern(query.Name))
	}

	return q
}

func (s *SQLiteStore) ListFolders(ctx context.Context, query FolderQuery) ([]models.Folder, int64, error) {
	var total int64
	if err := s.foldersQuery(ctx, query).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := s.foldersQuery(ctx, query).Order("name ASC").Order("id ASC")
	if query.Limit > 0 {
		q = q.Limit(query.Limit)
	}
	if query.Offset > 0 {
		q = q.Offset(query.Offset)
	}

	var folders []models.Folder
	err := q.Find(&folders).Error
	return folders, total, err
}

func (s *SQLiteStore) ListOwnerFolders(ctx context.Context, ownerID string) ([]models.Folder, error) {
	var folders []models.Folder
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("name ASC").
		Find(&folders).Error
	return folders, err
}

func (s *SQLiteStore) CountSiblingFolders(ctx context.Context, ownerID string, parentID *string, name, excludeID string) (int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Folder{}).
		Where("owner_id = ? AND name = ?", ownerID, name)
	q = scopeNullable(q, "parent_id", parentID)

	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	err := q.Count(&count).Error
	return count, err
}

func (s *SQLiteStore) CountChildFolders(ctx context.Context, ownerID, id string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Folder{}).
		Where("owner_id = ? AND parent_id = ?", ownerID, id).
		Count(&count).Error
	return count, err
}

func (s *SQLiteStore) UpdateFolder(ctx context.Context, folder *models.Folder) error {
	return s.db.WithContext(ctx).Save(folder).Error
}

func (s *SQLiteStore) DeleteFolder(ctx context.Context, ownerID, id string) error {
	return s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Delete(&models.Folder{}, "id = ?", id).Error
}

// File operations

func (s *SQLiteStore) CreateFile(ctx context.Context, file *models.File) error {
	return s.db.WithContext(ctx).Create(file).Error
}

func (s *SQLiteStore) GetFile(ctx context.Context, ownerID, id string) (*models.File, error) {
	var file models.File
	err := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&file).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (s *SQLiteStore) GetFiles(ctx context.Context, ownerID string, ids []string) ([]models.File, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var files []models.File
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND id IN ?", ownerID, ids).
		Find(&files).Error
	return files, err
}

func (s *SQLiteStore) filesQuery(ctx context.Context, query FileQuery) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.File{}).Where("owner_id = ?", query.OwnerID)

	if query.ByFolder {
		q = scopeNullable(q, "folder_id", query.FolderID)
	}
	if query.Search != "" {
		q = q.Where(`LOWER(original_name) LIKE ? ESCAPE '\'`, containsPattern(query.Search))
	}
	if query.MimeType != "" {
		// "image" and "image/*" select a whole family, anything else must match exactly
		family := strings.TrimSuffix(query.MimeType, "/*")
		if strings.Contains(family, "/") {
			q = q.Where("LOWER(mime_type) = ?", strings.ToLower(family))
		} else {
			q = q.Where(`LOWER(mime_type) LIKE ? ESCAPE '\'`, prefixPattern(family+"/"))
		}
	}
	if query.MimeTypes != nil {
		q = q.Where("mime_type IN ?", query.MimeTypes)
	}

	return q
}

func (s *SQLiteStore) ListFiles(ctx context.Context, query FileQuery) ([]models.File, int64, error) {
	var total int64
	if err := s.filesQuery(ctx, query).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := FileSortColumn(query.Sort)
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if query.Desc {
		direction = "DESC"
	}

	q := s.filesQuery(ctx, query).Order(fmt.Sprintf("%s %s", column, direction)).Order("id ASC")
	if query.Limit > 0 {
		q = q.Limit(query.Limit)
	}
	if query.Offset > 0 {
		q = q.Offset(query.Offset)
	}

	var files []models.File
	err := q.Find(&files).Error
	return files, total, err
}

func (s *SQLiteStore) CountFolderFiles(ctx context.Context, ownerID, folderID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.File{}).
		Where("owner_id = ? AND folder_id = ?", ownerID, folderID).
		Count(&count).Error
	return count, err
}

func (s *SQLiteStore) GetFileUsage(ctx context.Context, ownerID string) ([]MimeUsage, error) {
	var usage []MimeUsage
	err := s.db.WithContext(ctx).Model(&models.File{}).
		Select("mime_type, COUNT(*) AS count, COALESCE(SUM(size), 0) AS size").
		Where("owner_id = ?", ownerID).
		Group("mime_type").
		Scan(&usage).Error
	return usage, err
}

func (s *SQLiteStore) UpdateFile(ctx context.Context, file *models.File) error {
	return s.db.WithContext(ctx).Omit("Shares").Save(file).Error
}

func (s *SQLiteStore) DeleteFile(ctx context.Context, ownerID, id string) error {
	return s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Delete(&models.File{}, "id = ?", id).Error
}

// Share operations

func (s *SQLiteStore) CreateShare(ctx context.Context, share *models.Share) error {
	return s.db.WithContext(ctx).Create(share).Error
}

func (s *SQLiteStore) GetFileShares(ctx context.Context, fileID string) ([]models.Share, error) {
	var shares []models.Share
	err := s.db.WithContext(ctx).Where("file_id = ?", fileID).Find(&shares).Error
	return shares, err
}

func (s *SQLiteStore) DeleteFileShares(ctx context.Context, fileID string) error {
	return s.db.WithContext(ctx).Where("file_id = ?", fileID).Delete(&models.Share{}).Error
}

// Orphan object operations

func (s *SQLiteStore) CreateOrphanObject(ctx context.Context, orphan *models.OrphanObject) error {
	return s.db.WithContext(ctx).Create(orphan).Error
}

// ListOrphanObjects returns orphans of one bucket, least attempted and least
// recently touched first, so records that keep failing rotate to the back.
func (s *SQLiteStore) ListOrphanObjects(ctx context.Context, bucket string, limit int) ([]models.OrphanObject, error) {
	var orphans []models.OrphanObject
	query := s.db.WithContext(ctx).
		Where("bucket = ?", bucket).
		Order("attempts ASC, updated_at ASC, id ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Find(&orphans).Error
	return orphans, err
}

func (s *SQLiteStore) UpdateOrphanObject(ctx context.Context, orphan *models.OrphanObject) error {
	return s.db.WithContext(ctx).Save(orphan).Error
}

func (s *SQLiteStore) DeleteOrphanObject(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.OrphanObject{}, id).Error
}
