package drive

import (
	"context"
	"fmt"
)

type CategoryStat struct {
	Count int64 `json:"count"`
	Size  int64 `json:"size"`
}

type StorageStats struct {
	TotalFiles    int64                   `json:"totalFiles"`
	TotalSize     int64                   `json:"totalSize"`
	CategoryStats map[string]CategoryStat `json:"categoryStats"`
}

// StorageStats aggregates the owner's files per category. The store groups by
// mime type, so only one row per distinct type is reduced here.
func (s *FileService) StorageStats(ctx context.Context, ownerID string) (*StorageStats, error) {
	usage, err := s.store.GetFileUsage(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate storage usage: %w", err)
	}

	stats := &StorageStats{
		CategoryStats: make(map[string]CategoryStat),
	}
	for _, u := range usage {
		stats.TotalFiles += u.Count
		stats.TotalSize += u.Size

		category := CategoryOf(u.MimeType)
		stat := stats.CategoryStats[category]
		stat.Count += u.Count
		stat.Size += u.Size
		stats.CategoryStats[category] = stat
	}

	return stats, nil
}
