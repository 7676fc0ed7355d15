package drive

import (
	"context"
	"fmt"
	"time"

	"github.com/mwantia/godrive/pkg/db/models"
	"github.com/mwantia/godrive/pkg/db/store"
	"github.com/mwantia/godrive/pkg/log"
	"github.com/mwantia/godrive/pkg/objectstore"
)

// discardObject compensates a failed metadata write by deleting the object that
// was just written. If that fails as well the key is recorded for the sweeper.
func (s *FileService) discardObject(ctx context.Context, key, reason string, cause error) {
	// the request may already be canceled, cleanup must still run
	ctx = context.WithoutCancel(ctx)

	s.log.Warn("Discarding object after failed %s metadata write: %v", reason, cause)

	err := s.objects.Delete(ctx, key)
	if err == nil {
		return
	}

	orphan := &models.OrphanObject{
		Bucket:    s.objects.Bucket(),
		Path:      key,
		Reason:    fmt.Sprintf("%s: %v", reason, cause),
		LastError: err.Error(),
	}
	if err := s.store.CreateOrphanObject(ctx, orphan); err != nil {
		s.log.Error("Failed to record orphaned object '%s': %v", key, err)
		return
	}

	s.log.Warn("Recorded orphaned object #%d for later cleanup", orphan.ID)
}

// OrphanSweeper deletes objects recorded by failed upload or copy compensation.
type OrphanSweeper struct {
	store     store.MetadataStore
	objects   objectstore.ObjectStore
	batchSize int
	log       log.LoggerService
}

func NewOrphanSweeper(metadata store.MetadataStore, objects objectstore.ObjectStore, batchSize int, logger log.LoggerService) *OrphanSweeper {
	if batchSize <= 0 {
		batchSize = 100
	}

	return &OrphanSweeper{
		store:     metadata,
		objects:   objects,
		batchSize: batchSize,
		log:       logger.Named("sweeper"),
	}
}

// Sweep processes one batch of orphan records and returns how many objects were removed.
func (s *OrphanSweeper) Sweep(ctx context.Context) (int, error) {
	orphans, err := s.store.ListOrphanObjects(ctx, s.objects.Bucket(), s.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list orphaned objects: %w", err)
	}

	removed := 0
	for i := range orphans {
		orphan := &orphans[i]
		if err := s.objects.Delete(ctx, orphan.Path); err != nil {
			orphan.Attempts++
			orphan.LastError = err.Error()
			if err := s.store.UpdateOrphanObject(ctx, orphan); err != nil {
				return removed, fmt.Errorf("failed to update orphan #%d: %w", orphan.ID, err)
			}
			continue
		}

		if err := s.store.DeleteOrphanObject(ctx, orphan.ID); err != nil {
			return removed, fmt.Errorf("failed to delete orphan #%d: %w", orphan.ID, err)
		}
		removed++
	}

	if removed > 0 {
		s.log.Info("Removed %d orphaned object(s)", removed)
	}
	return removed, nil
}

// Run sweeps once immediately and then on every interval until ctx is done.
func (s *OrphanSweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
			s.log.Error("Orphan sweep failed: %v", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
