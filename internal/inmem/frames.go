package inmem

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/amankumarsingh77/frame-search/internal/models"
)

type FrameRepo struct {
	mu     sync.Mutex
	nextID int64
	frames map[string][]*models.Frame

	ReplaceErr error
}

func NewFrameRepo() *FrameRepo {
	return &FrameRepo{frames: make(map[string][]*models.Frame)}
}

func (r *FrameRepo) ReplaceForVideo(_ context.Context, videoID string, frames []*models.Frame) (int, error) {
	if r.ReplaceErr != nil {
		return 0, r.ReplaceErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := make([]*models.Frame, 0, len(frames))
	for _, f := range frames {
		r.nextID++
		c := *f
		c.ID = r.nextID
		c.VideoID = videoID
		stored = append(stored, &c)
	}
	if len(stored) == 0 {
		delete(r.frames, videoID)
	} else {
		r.frames[videoID] = stored
	}
	return len(stored), nil
}

func (r *FrameRepo) ListByVideo(_ context.Context, videoID string) ([]*models.FrameView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.FrameView, 0, len(r.frames[videoID]))
	for _, f := range r.frames[videoID] {
		out = append(out, &models.FrameView{FrameID: f.ID, FrameIndex: f.FrameIndex, Timestamp: f.Timestamp})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

func (r *FrameRepo) CountFrames(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, fs := range r.frames {
		n += len(fs)
	}
	return n, nil
}

func (r *FrameRepo) CountByVideo(_ context.Context) ([]*models.VideoFrameCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.VideoFrameCount, 0, len(r.frames))
	for id, fs := range r.frames {
		out = append(out, &models.VideoFrameCount{VideoID: id, FrameCount: len(fs)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VideoID < out[j].VideoID })
	return out, nil
}

// DeleteVideo drops the video's frames, mirroring the foreign key cascade.
func (r *FrameRepo) DeleteVideo(videoID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.frames, videoID)
}

// VectorIndex is a brute force cosine similarity index.
type VectorIndex struct {
	mu        sync.Mutex
	dimension int
	records   map[string]models.VectorRecord

	UpsertErr error
	QueryErr  error
}

func NewVectorIndex(dimension int) *VectorIndex {
	return &VectorIndex{dimension: dimension, records: make(map[string]models.VectorRecord)}
}

func (x *VectorIndex) Upsert(_ context.Context, records []models.VectorRecord) (int, error) {
	if x.UpsertErr != nil {
		return 0, x.UpsertErr
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, rec := range records {
		if x.dimension > 0 && len(rec.Values) != x.dimension {
			return 0, fmt.Errorf("failed to upsert vector %s: dimension %d, want %d", rec.ID, len(rec.Values), x.dimension)
		}
	}
	for _, rec := range records {
		rec.Values = append([]float32(nil), rec.Values...)
		x.records[rec.ID] = rec
	}
	return len(records), nil
}

func (x *VectorIndex) Query(_ context.Context, vector []float32, topK int, filter models.VectorFilter) ([]models.ScoredMatch, error) {
	if x.QueryErr != nil {
		return nil, x.QueryErr
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	allowed := make(map[string]struct{}, len(filter.VideoIDs))
	for _, id := range filter.VideoIDs {
		allowed[id] = struct{}{}
	}
	out := make([]models.ScoredMatch, 0, len(x.records))
	for _, rec := range x.records {
		if len(allowed) > 0 {
			if _, ok := allowed[rec.VideoID]; !ok {
				continue
			}
		}
		out = append(out, models.ScoredMatch{
			ID:         rec.ID,
			VideoID:    rec.VideoID,
			FrameIndex: rec.FrameIndex,
			Timestamp:  rec.Timestamp,
			Score:      cosine(vector, rec.Values),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	if topK >= 0 && len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

func (x *VectorIndex) DeleteByVideo(_ context.Context, videoID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	for id, rec := range x.records {
		if rec.VideoID == videoID {
			delete(x.records, id)
		}
	}
	return nil
}

func (x *VectorIndex) Stats(_ context.Context) (*models.IndexStats, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return &models.IndexStats{TotalVectors: len(x.records), Dimension: x.dimension}, nil
}

// CountByVideo returns how many vectors the video holds.
func (x *VectorIndex) CountByVideo(videoID string) int {
	x.mu.Lock()
	defer x.mu.Unlock()
	n := 0
	for _, rec := range x.records {
		if rec.VideoID == videoID {
			n++
		}
	}
	return n
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
