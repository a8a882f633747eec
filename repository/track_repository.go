// Package repository provides catalog access for tracks. The engine itself
// never writes to the catalog; it only lists and resolves tracks to feed the
// playback and recommendation layers.
package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"EchoFM/model"
)

// ErrTrackNotFound is returned when an ID resolves to no catalog entry.
var ErrTrackNotFound = errors.New("track not found")

// TrackRepository defines the interface for catalog read operations.
type TrackRepository interface {
	ListTracks(ctx context.Context, filter model.TrackFilter) ([]*model.Track, error)
	GetTrackByID(ctx context.Context, id int64) (*model.Track, error)
}

// trackRow is the GORM mapping for the tracks table. Tags are stored as a
// comma-separated string.
type trackRow struct {
	ID            int64   `gorm:"column:id;primaryKey;autoIncrement"`
	Title         string  `gorm:"column:title;size:255"`
	Artist        string  `gorm:"column:artist;size:255;index"`
	Category      string  `gorm:"column:category;size:64;index"`
	Tags          string  `gorm:"column:tags;size:512"`
	Duration      float64 `gorm:"column:duration"`
	AudioURL      string  `gorm:"column:audio_url;size:512"`
	CoverURL      string  `gorm:"column:cover_url;size:512"`
	PlayCount     int64   `gorm:"column:play_count"`
	DownloadCount int64   `gorm:"column:download_count"`
}

func (trackRow) TableName() string { return "tracks" }

func (r trackRow) toModel() *model.Track {
	var tags []string
	if r.Tags != "" {
		tags = strings.Split(r.Tags, ",")
	}
	return &model.Track{
		ID:            r.ID,
		Title:         r.Title,
		Artist:        r.Artist,
		Category:      r.Category,
		Tags:          tags,
		Duration:      r.Duration,
		AudioURL:      r.AudioURL,
		CoverURL:      r.CoverURL,
		PlayCount:     r.PlayCount,
		DownloadCount: r.DownloadCount,
	}
}

// TrackRowModel exposes the row type for schema migration.
func TrackRowModel() interface{} { return &trackRow{} }

// gormTrackRepository implements TrackRepository on MySQL via GORM.
type gormTrackRepository struct {
	db *gorm.DB
}

// NewGormTrackRepository creates a catalog repository backed by GORM.
func NewGormTrackRepository(db *gorm.DB) TrackRepository {
	return &gormTrackRepository{db: db}
}

func (r *gormTrackRepository) ListTracks(ctx context.Context, filter model.TrackFilter) ([]*model.Track, error) {
	q := r.db.WithContext(ctx).Model(&trackRow{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	for _, tag := range filter.Tags {
		q = q.Where("tags LIKE ?", "%"+tag+"%")
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where("title LIKE ? OR artist LIKE ?", pattern, pattern)
	}

	switch filter.Sort {
	case model.SortPopular:
		q = q.Order("play_count DESC")
	case model.SortDownloads:
		q = q.Order("download_count DESC")
	default:
		q = q.Order("id DESC")
	}

	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var rows []trackRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}
	tracks := make([]*model.Track, 0, len(rows))
	for _, row := range rows {
		tracks = append(tracks, row.toModel())
	}
	return tracks, nil
}

func (r *gormTrackRepository) GetTrackByID(ctx context.Context, id int64) (*model.Track, error) {
	var row trackRow
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTrackNotFound
		}
		return nil, fmt.Errorf("failed to get track by ID %d: %w", id, err)
	}
	return row.toModel(), nil
}

// memoryTrackRepository serves a fixed catalog from memory. Used by the
// command-line tools and tests.
type memoryTrackRepository struct {
	tracks []*model.Track
}

// NewMemoryTrackRepository creates a repository over an in-memory catalog.
func NewMemoryTrackRepository(tracks []*model.Track) TrackRepository {
	return &memoryTrackRepository{tracks: tracks}
}

func (r *memoryTrackRepository) ListTracks(_ context.Context, filter model.TrackFilter) ([]*model.Track, error) {
	out := make([]*model.Track, 0, len(r.tracks))
	for _, t := range r.tracks {
		if filter.Category != "" && !strings.EqualFold(t.Category, filter.Category) {
			continue
		}
		if !hasAllTags(t, filter.Tags) {
			continue
		}
		if filter.Search != "" && !matchesSearch(t, filter.Search) {
			continue
		}
		out = append(out, t)
	}

	switch filter.Sort {
	case model.SortPopular:
		sort.SliceStable(out, func(i, j int) bool { return out[i].PlayCount > out[j].PlayCount })
	case model.SortDownloads:
		sort.SliceStable(out, func(i, j int) bool { return out[i].DownloadCount > out[j].DownloadCount })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []*model.Track{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *memoryTrackRepository) GetTrackByID(_ context.Context, id int64) (*model.Track, error) {
	for _, t := range r.tracks {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, ErrTrackNotFound
}

func hasAllTags(t *model.Track, tags []string) bool {
	for _, tag := range tags {
		if !t.HasTag(tag) {
			return false
		}
	}
	return true
}

func matchesSearch(t *model.Track, search string) bool {
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Artist), needle)
}
