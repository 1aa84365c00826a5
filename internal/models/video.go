package models

import (
	"io"
	"time"
)

type Video struct {
	ID              string    `json:"id" db:"id" validate:"required"`
	Filename        string    `json:"filename" db:"filename" validate:"required,lte=255"`
	StorageKey      string    `json:"s3_key" db:"s3_key" validate:"required,lte=255"`
	SizeBytes       int64     `json:"size_bytes" db:"size_bytes" validate:"required"`
	DurationSeconds *float64  `json:"duration_seconds" db:"duration_seconds"`
	Format          string    `json:"format" db:"format" validate:"required,lte=20"`
	UploadedAt      time.Time `json:"uploaded_at" db:"uploaded_at"`
}

type VideoList struct {
	Videos     []*Video `json:"videos"`
	TotalCount int      `json:"total_count"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	HasMore    bool     `json:"has_more"`
}

// VideoUploadInput is what the submission path receives from the HTTP layer.
// File is consumed exactly once by the blob upload.
type VideoUploadInput struct {
	File        io.Reader `json:"-"`
	Filename    string    `json:"filename" validate:"required,lte=255"`
	Size        int64     `json:"size" validate:"required,gt=0"`
	ContentType string    `json:"content_type"`
}
