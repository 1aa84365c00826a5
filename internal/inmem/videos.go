// Package inmem holds map-backed implementations of the storage, queue and
// model interfaces. They back unit tests and local single-process runs.
package inmem

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/amankumarsingh77/frame-search/internal/models"
	"github.com/amankumarsingh77/frame-search/pkg/utils"
)

type VideoRepo struct {
	mu     sync.Mutex
	videos map[string]*models.Video
}

func NewVideoRepo() *VideoRepo {
	return &VideoRepo{videos: make(map[string]*models.Video)}
}

func (r *VideoRepo) CreateVideo(_ context.Context, video *models.Video) (*models.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.videos[video.ID]; ok {
		return nil, fmt.Errorf("failed to create video: duplicate id %s", video.ID)
	}
	v := *video
	if v.UploadedAt.IsZero() {
		v.UploadedAt = time.Now().UTC()
	}
	r.videos[v.ID] = &v
	out := v
	return &out, nil
}

func (r *VideoRepo) GetVideoByID(_ context.Context, videoID string) (*models.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[videoID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrVideoNotFound, videoID)
	}
	out := *v
	return &out, nil
}

func (r *VideoRepo) GetVideosByIDs(_ context.Context, videoIDs []string) ([]*models.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Video, 0, len(videoIDs))
	for _, id := range videoIDs {
		if v, ok := r.videos[id]; ok {
			c := *v
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *VideoRepo) GetVideos(_ context.Context, pq *utils.Pagination) (*models.VideoList, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*models.Video, 0, len(r.videos))
	for _, v := range r.videos {
		c := *v
		all = append(all, &c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UploadedAt.After(all[j].UploadedAt) })
	start := min(pq.GetOffset(), len(all))
	end := min(start+pq.GetLimit(), len(all))
	return &models.VideoList{
		Videos:     all[start:end],
		TotalCount: len(all),
		Page:       pq.GetPage(),
		PageSize:   pq.GetSize(),
		HasMore:    utils.GetHasMore(pq.GetPage(), len(all), pq.GetSize()),
	}, nil
}

func (r *VideoRepo) CountVideos(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.videos), nil
}

func (r *VideoRepo) DeleteVideo(_ context.Context, videoID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.videos[videoID]; !ok {
		return fmt.Errorf("%w: %s", models.ErrVideoNotFound, videoID)
	}
	delete(r.videos, videoID)
	return nil
}

func (r *VideoRepo) SetDurationIfUnset(_ context.Context, videoID string, duration float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[videoID]
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrVideoNotFound, videoID)
	}
	if v.DurationSeconds == nil {
		d := duration
		v.DurationSeconds = &d
	}
	return nil
}

// BlobStore keeps objects in memory keyed by bucket and key.
type BlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	// DownloadErr, when set, fails every Download.
	DownloadErr error
	PutErr      error
}

func NewBlobStore() *BlobStore {
	return &BlobStore{objects: make(map[string][]byte)}
}

func blobKey(bucket, key string) string {
	return bucket + "/" + key
}

func (b *BlobStore) PutObject(_ context.Context, bucket, key string, body io.Reader, _ int64, _ string) error {
	if b.PutErr != nil {
		return b.PutErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("failed to upload file : %w", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[blobKey(bucket, key)] = data
	return nil
}

func (b *BlobStore) Download(_ context.Context, bucket, key, destPath string) error {
	if b.DownloadErr != nil {
		return b.DownloadErr
	}
	b.mu.Lock()
	data, ok := b.objects[blobKey(bucket, key)]
	b.mu.Unlock()
	if !ok {
		return fmt.Errorf("failed to download file : no such key %s", key)
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(destPath, bytes.Clone(data), 0o644)
}

func (b *BlobStore) RemoveObject(_ context.Context, bucket, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, blobKey(bucket, key))
	return nil
}

func (b *BlobStore) HeadBucket(_ context.Context, _ string) error {
	return nil
}

func (b *BlobStore) Has(bucket, key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[blobKey(bucket, key)]
	return ok
}
