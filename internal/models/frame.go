package models

import "github.com/pgvector/pgvector-go"

type Frame struct {
	ID         int64           `json:"frame_id" db:"id"`
	VideoID    string          `json:"video_id" db:"video_id"`
	FrameIndex int             `json:"frame_index" db:"frame_index"`
	Timestamp  float64         `json:"timestamp" db:"timestamp_seconds"`
	Embedding  pgvector.Vector `json:"-" db:"embedding"`
	SceneLabel *string         `json:"scene_label,omitempty" db:"scene_label"`
}

type FrameView struct {
	FrameID       int64   `json:"frame_id" db:"id"`
	FrameIndex    int     `json:"frame_index" db:"frame_index"`
	Timestamp     float64 `json:"timestamp" db:"timestamp_seconds"`
	TimeFormatted string  `json:"time_formatted" db:"-"`
}

type VideoFrames struct {
	VideoID    string       `json:"video_id"`
	FrameCount int          `json:"frame_count"`
	Frames     []*FrameView `json:"frames"`
}

// VectorRecord is a frame embedding as stored in the vector index.
type VectorRecord struct {
	ID         string    `db:"id"`
	VideoID    string    `db:"video_id"`
	FrameIndex int       `db:"frame_index"`
	Timestamp  float64   `db:"timestamp_seconds"`
	Values     []float32 `db:"-"`
}

type VectorFilter struct {
	VideoIDs []string
}

// ScoredMatch is one candidate returned by a similarity query.
type ScoredMatch struct {
	ID         string  `db:"id"`
	VideoID    string  `db:"video_id"`
	FrameIndex int     `db:"frame_index"`
	Timestamp  float64 `db:"timestamp_seconds"`
	Score      float64 `db:"score"`
}

type IndexStats struct {
	TotalVectors int `json:"total_vectors" db:"total_vectors"`
	Dimension    int `json:"dimension" db:"-"`
}
