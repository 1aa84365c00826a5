package usecase

import (
	"fmt"
	"sort"

	"github.com/amankumarsingh77/frame-search/internal/models"
)

// PoolPolicy sizes the candidate pool requested from the index:
// clamp(maxVideos * maxPerVideo * Oversample, MinPool, MaxPool).
type PoolPolicy struct {
	Oversample int
	MinPool    int
	MaxPool    int
}

func DefaultPoolPolicy() PoolPolicy {
	return PoolPolicy{Oversample: 5, MinPool: 50, MaxPool: 500}
}

// RankedGroup holds the matches of one video in descending score order.
type RankedGroup struct {
	VideoID string
	Matches []models.ScoredMatch
}

type Ranking struct {
	Groups            []RankedGroup
	TotalMatches      int
	AverageSimilarity float64
}

// Ranker turns a score-sorted candidate pool into per-video groups. It holds
// no mutable state and is safe for concurrent use.
type Ranker struct {
	policy PoolPolicy
}

func NewRanker(policy PoolPolicy) *Ranker {
	def := DefaultPoolPolicy()
	if policy.Oversample <= 0 {
		policy.Oversample = def.Oversample
	}
	if policy.MinPool <= 0 {
		policy.MinPool = def.MinPool
	}
	if policy.MaxPool < policy.MinPool {
		policy.MaxPool = max(def.MaxPool, policy.MinPool)
	}
	return &Ranker{policy: policy}
}

func (r *Ranker) PoolSize(maxVideos, maxPerVideo int) int {
	desired := maxVideos * maxPerVideo * r.policy.Oversample
	return min(max(desired, r.policy.MinPool), r.policy.MaxPool)
}

// Rank filters candidates below threshold, groups the rest by video in the
// order videos are first seen and caps each group at maxPerVideo. No new
// video is admitted once maxVideos groups exist, but admitted groups keep
// filling. Candidates must be sorted by descending score.
func (r *Ranker) Rank(candidates []models.ScoredMatch, threshold float64, maxPerVideo, maxVideos int) (*Ranking, error) {
	if maxPerVideo < 1 || maxVideos < 1 {
		return nil, fmt.Errorf("invalid ranking limits: %d per video, %d videos", maxPerVideo, maxVideos)
	}
	for i := 1; i < len(candidates); i++ {
		if candidates[i].Score > candidates[i-1].Score {
			return nil, fmt.Errorf("%w: position %d scores %.6f after %.6f",
				models.ErrUnsortedCandidates, i, candidates[i].Score, candidates[i-1].Score)
		}
	}

	ranking := &Ranking{Groups: make([]RankedGroup, 0, min(maxVideos, len(candidates)))}
	groupIdx := make(map[string]int, maxVideos)
	full := 0
	var sum float64

	for _, c := range candidates {
		// Sorted input: nothing after this can pass the threshold.
		if c.Score < threshold {
			break
		}
		idx, ok := groupIdx[c.VideoID]
		if !ok {
			if len(ranking.Groups) >= maxVideos {
				continue
			}
			idx = len(ranking.Groups)
			groupIdx[c.VideoID] = idx
			ranking.Groups = append(ranking.Groups, RankedGroup{VideoID: c.VideoID})
		}
		g := &ranking.Groups[idx]
		if len(g.Matches) >= maxPerVideo {
			continue
		}
		g.Matches = append(g.Matches, c)
		ranking.TotalMatches++
		sum += c.Score
		if len(g.Matches) == maxPerVideo {
			full++
			if full == maxVideos {
				break
			}
		}
	}

	if ranking.TotalMatches > 0 {
		ranking.AverageSimilarity = sum / float64(ranking.TotalMatches)
	}
	return ranking, nil
}

// SortCandidates orders a pool the way the index returns it: by descending
// score, ties in their original order.
func SortCandidates(pool []models.ScoredMatch) []models.ScoredMatch {
	out := append([]models.ScoredMatch(nil), pool...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
