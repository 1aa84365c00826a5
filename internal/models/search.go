package models

type SearchRequest struct {
	Query              string   `json:"query" validate:"required,lte=500"`
	VideoIDs           []string `json:"video_ids" validate:"omitempty,dive,uuid"`
	Threshold          float64  `json:"threshold" validate:"gte=0,lte=1"`
	MaxResultsPerVideo int      `json:"max_results_per_video" validate:"gte=1,lte=100"`
	MaxVideos          int      `json:"max_videos" validate:"gte=1,lte=100"`
}

type FrameMatch struct {
	FrameID         string  `json:"frame_id"`
	FrameIndex      int     `json:"frame_index"`
	Timestamp       float64 `json:"timestamp"`
	TimeFormatted   string  `json:"time_formatted"`
	SimilarityScore float64 `json:"similarity_score"`
}

type VideoResult struct {
	VideoID       string        `json:"video_id"`
	VideoFilename string        `json:"video_filename"`
	Matches       []*FrameMatch `json:"matches"`
}

type SearchResponse struct {
	Query             string         `json:"query"`
	TotalVideos       int            `json:"total_videos"`
	TotalMatches      int            `json:"total_matches"`
	Results           []*VideoResult `json:"results"`
	AverageSimilarity float64        `json:"average_similarity"`
}

type VideoFrameCount struct {
	VideoID    string `json:"video_id" db:"video_id"`
	Filename   string `json:"filename" db:"filename"`
	FrameCount int    `json:"frame_count" db:"frame_count"`
}

type SearchStats struct {
	TotalVideos       int                `json:"total_videos"`
	TotalFrames       int                `json:"total_frames"`
	AvgFramesPerVideo float64            `json:"avg_frames_per_video"`
	IndexedVectors    int                `json:"indexed_vectors"`
	Videos            []*VideoFrameCount `json:"videos"`
}
