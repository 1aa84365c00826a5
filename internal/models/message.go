package models

import "encoding/json"

// WorkMessage is the queue payload pointing at a job and the video it processes.
// Unknown JSON fields are ignored.
type WorkMessage struct {
	JobID         string `json:"job_id" validate:"required"`
	VideoID       string `json:"video_id" validate:"required"`
	StorageKey    string `json:"storage_key" validate:"required"`
	StorageBucket string `json:"storage_bucket"`
}

// UnmarshalJSON also accepts the s3_key/s3_bucket field names written by
// older producers.
func (m *WorkMessage) UnmarshalJSON(data []byte) error {
	type plain WorkMessage
	var aux struct {
		plain
		S3Key    string `json:"s3_key"`
		S3Bucket string `json:"s3_bucket"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*m = WorkMessage(aux.plain)
	if m.StorageKey == "" {
		m.StorageKey = aux.S3Key
	}
	if m.StorageBucket == "" {
		m.StorageBucket = aux.S3Bucket
	}
	return nil
}

// QueueMessage is a received, not yet acknowledged, transport message.
type QueueMessage struct {
	ID            string
	ReceiptHandle string
	Body          []byte
	ReceiveCount  int
}
