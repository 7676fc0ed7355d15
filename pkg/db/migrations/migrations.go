package migrations

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mwantia/godrive/pkg/db/models"
	"gorm.io/gorm"
)

// Migration is one versioned schema step. Down must undo exactly what Up created.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *gorm.DB) error
	Down        func(tx *gorm.DB) error
}

type schemaVersion struct {
	Version     int    `gorm:"primaryKey;autoIncrement:false"`
	Description string `gorm:"type:text"`
	AppliedAt   time.Time
}

func (schemaVersion) TableName() string {
	return "schema_versions"
}

type MigrationStatus struct {
	Version     int
	Description string
	Applied     bool
	AppliedAt   *time.Time
}

type Migrator struct {
	db    *gorm.DB
	steps []Migration
}

func NewMigrator(db *gorm.DB) *Migrator {
	return newMigrator(db, schema())
}

func newMigrator(db *gorm.DB, steps []Migration) *Migrator {
	sorted := append([]Migration(nil), steps...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Version < sorted[j].Version
	})

	return &Migrator{db: db, steps: sorted}
}

func (m *Migrator) applied(ctx context.Context) (map[int]schemaVersion, error) {
	if err := m.db.WithContext(ctx).AutoMigrate(&schemaVersion{}); err != nil {
		return nil, fmt.Errorf("failed to prepare schema version table: %w", err)
	}

	var rows []schemaVersion
	if err := m.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read schema versions: %w", err)
	}

	versions := make(map[int]schemaVersion, len(rows))
	for _, row := range rows {
		versions[row.Version] = row
	}
	return versions, nil
}

// Migrate applies every pending step in version order and returns the versions it applied.
// Each step and its bookkeeping row commit in one transaction.
func (m *Migrator) Migrate(ctx context.Context) ([]int, error) {
	done, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}

	var versions []int
	for _, step := range m.steps {
		if _, ok := done[step.Version]; ok {
			continue
		}

		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := step.Up(tx); err != nil {
				return err
			}
			return tx.Create(&schemaVersion{
				Version:     step.Version,
				Description: step.Description,
				AppliedAt:   time.Now().UTC(),
			}).Error
		})
		if err != nil {
			return versions, fmt.Errorf("schema version %d (%s): %w", step.Version, step.Description, err)
		}
		versions = append(versions, step.Version)
	}

	return versions, nil
}

// Rollback reverts the most recently applied version.
func (m *Migrator) Rollback(ctx context.Context) (int, error) {
	var last schemaVersion
	if err := m.db.WithContext(ctx).Order("version DESC").First(&last).Error; err != nil {
		return 0, fmt.Errorf("nothing to roll back: %w", err)
	}

	idx := sort.Search(len(m.steps), func(i int) bool {
		return m.steps[i].Version >= last.Version
	})
	if idx == len(m.steps) || m.steps[idx].Version != last.Version {
		return 0, fmt.Errorf("schema version %d is unknown to this build", last.Version)
	}
	step := m.steps[idx]

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := step.Down(tx); err != nil {
			return err
		}
		return tx.Delete(&schemaVersion{}, "version = ?", last.Version).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to roll back schema version %d: %w", last.Version, err)
	}

	return last.Version, nil
}

func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	done, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]MigrationStatus, 0, len(m.steps))
	for _, step := range m.steps {
		status := MigrationStatus{
			Version:     step.Version,
			Description: step.Description,
		}
		if row, ok := done[step.Version]; ok {
			appliedAt := row.AppliedAt
			status.Applied = true
			status.AppliedAt = &appliedAt
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func schema() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "folders, files and share references",
			Up: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Folder{}, &models.File{}, &models.Share{})
			},
			Down: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&models.Share{}, &models.File{}, &models.Folder{})
			},
		},
		{
			Version:     2,
			Description: "orphaned object records",
			Up: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.OrphanObject{})
			},
			Down: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&models.OrphanObject{})
			},
		},
	}
}
