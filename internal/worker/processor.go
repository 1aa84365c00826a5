package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/amankumarsingh77/frame-search/internal/frames"
	"github.com/amankumarsingh77/frame-search/internal/metrics"
	"github.com/amankumarsingh77/frame-search/internal/models"
	"github.com/amankumarsingh77/frame-search/internal/sampler"
	"github.com/amankumarsingh77/frame-search/pkg/tracing"
	"github.com/amankumarsingh77/frame-search/pkg/utils"
	"github.com/pgvector/pgvector-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// handleMessage runs one message to completion and reports whether it was
// acknowledged. Pipeline failures are recorded on the job and leave the
// message for redelivery; the returned error is only set when acknowledging
// failed.
//
// A FAILED job is terminal, so a redelivered message for it is acknowledged
// without reprocessing. Redelivery therefore only retries attempts that
// crashed before reaching a terminal status, and the transport's max receive
// count only bounds those. Retrying a failed job means submitting a new one.
func (w *Worker) handleMessage(ctx context.Context, msg *models.QueueMessage) (bool, error) {
	metrics.MessagesReceivedTotal.Inc()

	work, err := decodeMessage(ctx, msg.Body)
	if err != nil {
		if err := w.dropMalformed(ctx, msg, err); err != nil {
			return false, err
		}
		return true, nil
	}

	w.logger.Infof("Processing job %s for video %s (receive #%d)", work.JobID, work.VideoID, msg.ReceiveCount)
	err = w.processJob(ctx, work)
	switch {
	case errors.Is(err, errStaleDelivery):
		w.logger.Warnf("Job %s already finished, acknowledging redelivered message", work.JobID)
	case err != nil:
		w.logger.Errorf("processJob - job %s error: %v", work.JobID, err)
		w.failJob(ctx, work.JobID, err)
		return false, nil
	}

	if err := w.Queue.Delete(ctx, msg); err != nil {
		return false, fmt.Errorf("failed to delete message: %w", err)
	}
	w.logger.Debugf("Message %s deleted from queue", msg.ID)
	return true, nil
}

func decodeMessage(ctx context.Context, body []byte) (*models.WorkMessage, error) {
	var work models.WorkMessage
	if err := json.Unmarshal(body, &work); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedMessage, err)
	}
	if err := utils.ValidateStruct(ctx, &work); err != nil {
		return &work, fmt.Errorf("%w: %v", models.ErrMalformedMessage, err)
	}
	return &work, nil
}

// dropMalformed deletes a message that can never be processed. When a job id
// can be salvaged the job is marked failed first.
func (w *Worker) dropMalformed(ctx context.Context, msg *models.QueueMessage, cause error) error {
	metrics.MalformedMessagesTotal.Inc()
	w.logger.Errorf("handleMessage - dropping message %s: %v", msg.ID, cause)

	if jobID := salvageJobID(msg.Body); jobID != "" {
		w.failJob(ctx, jobID, cause)
	}
	if err := w.Queue.Delete(ctx, msg); err != nil {
		return fmt.Errorf("failed to delete malformed message: %w", err)
	}
	return nil
}

func salvageJobID(body []byte) string {
	var partial struct {
		JobID interface{} `json:"job_id"`
	}
	if err := json.Unmarshal(body, &partial); err != nil {
		return ""
	}
	if id, ok := partial.JobID.(string); ok {
		return id
	}
	return ""
}

func (w *Worker) failJob(ctx context.Context, jobID string, cause error) {
	completed := w.now().UTC()
	msg := cause.Error()
	_, err := w.Orchestrator.Transition(ctx, jobID, models.JobStatusFailed, models.TransitionFields{
		CompletedAt:  &completed,
		ErrorMessage: &msg,
	})
	if err != nil {
		w.logger.Errorf("failJob - failed to mark job %s failed: %v", jobID, err)
		return
	}
	metrics.JobsProcessedTotal.WithLabelValues(string(models.JobStatusFailed)).Inc()
}

func (w *Worker) processJob(ctx context.Context, work *models.WorkMessage) (err error) {
	ctx, span := tracing.StartSpan(ctx, "worker.processJob")
	span.SetAttributes(
		attribute.String("job.id", work.JobID),
		attribute.String("video.id", work.VideoID),
	)
	defer func() {
		if err != nil && !errors.Is(err, errStaleDelivery) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	start := w.now()
	startedAt := start.UTC()
	_, err = w.Orchestrator.Transition(ctx, work.JobID, models.JobStatusProcessing, models.TransitionFields{
		StartedAt: &startedAt,
	})
	switch {
	case errors.Is(err, models.ErrJobNotFound):
		w.logger.Warnf("Job %s not found, processing video %s anyway", work.JobID, work.VideoID)
	case errors.Is(err, models.ErrInvalidTransition):
		return fmt.Errorf("%w: %v", errStaleDelivery, err)
	case err != nil:
		return fmt.Errorf("failed to start job: %w", err)
	}

	workDir, err := os.MkdirTemp(w.cfg.Worker.TempDir, "job-")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(workDir); rmErr != nil {
			w.logger.Warnf("Failed to clean up %s: %v", workDir, rmErr)
		}
	}()

	result, err := w.runPipeline(ctx, work, workDir)
	if err != nil {
		return err
	}

	completed := w.now()
	completedAt := completed.UTC()
	elapsed := completed.Sub(start).Seconds()
	_, err = w.Orchestrator.Transition(ctx, work.JobID, models.JobStatusCompleted, models.TransitionFields{
		CompletedAt:           &completedAt,
		ProcessingTimeSeconds: &elapsed,
		FramesProcessed:       &result.framesProcessed,
		EmbeddingsStored:      &result.embeddingsStored,
	})
	if err != nil && !errors.Is(err, models.ErrJobNotFound) {
		return fmt.Errorf("failed to complete job: %w", err)
	}

	metrics.JobsProcessedTotal.WithLabelValues(string(models.JobStatusCompleted)).Inc()
	w.logger.Infof("Job %s completed in %.2fs: %d frames processed, %d embeddings stored, video duration %.2fs",
		work.JobID, elapsed, result.framesProcessed, result.embeddingsStored, result.duration)
	return nil
}

func (w *Worker) runPipeline(ctx context.Context, work *models.WorkMessage, workDir string) (*pipelineResult, error) {
	bucket := work.StorageBucket
	if bucket == "" {
		bucket = w.cfg.S3.Bucket
	}
	localPath := filepath.Join(workDir, "source"+filepath.Ext(work.StorageKey))

	err := w.stage(ctx, "download", func(ctx context.Context) error {
		if err := w.AWSRepo.Download(ctx, bucket, work.StorageKey, localPath); err != nil {
			return fmt.Errorf("failed to download s3://%s/%s: %w", bucket, work.StorageKey, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var sample *sampler.Result
	err = w.stage(ctx, "sample", func(ctx context.Context) error {
		var err error
		sample, err = w.Sampler.Sample(ctx, localPath, workDir, w.cfg.Worker.SampleStride)
		if err != nil {
			return fmt.Errorf("failed to sample frames: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var vectors [][]float32
	err = w.stage(ctx, "embed", func(ctx context.Context) error {
		var err error
		vectors, err = w.embedFrames(ctx, sample.Frames)
		return err
	})
	if err != nil {
		return nil, err
	}

	var stored int
	err = w.stage(ctx, "index", func(ctx context.Context) error {
		var err error
		stored, err = w.storeFrames(ctx, work.VideoID, sample.Frames, vectors)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := w.VideoRepo.SetDurationIfUnset(ctx, work.VideoID, sample.Duration); err != nil {
		if !errors.Is(err, models.ErrVideoNotFound) {
			return nil, fmt.Errorf("failed to set video duration: %w", err)
		}
		w.logger.Warnf("Video %s not found while setting duration", work.VideoID)
	}

	return &pipelineResult{
		framesProcessed:  len(sample.Frames),
		embeddingsStored: stored,
		duration:         sample.Duration,
	}, nil
}

func (w *Worker) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := tracing.StartSpan(ctx, "worker."+name)
	defer span.End()
	start := time.Now()
	err := fn(ctx)
	metrics.JobStageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// embedFrames encodes frames in fixed size batches, keeping frame order.
func (w *Worker) embedFrames(ctx context.Context, sampled []sampler.Frame) ([][]float32, error) {
	batchSize := max(w.cfg.Worker.EmbeddingBatchSize, 1)
	vectors := make([][]float32, 0, len(sampled))
	for start := 0; start < len(sampled); start += batchSize {
		end := min(start+batchSize, len(sampled))
		images := make([][]byte, 0, end-start)
		for _, f := range sampled[start:end] {
			images = append(images, f.Image)
		}
		batch, err := w.Model.EncodeImages(ctx, images)
		if err != nil {
			return nil, fmt.Errorf("failed to embed frames %d-%d: %w", start, end-1, err)
		}
		if len(batch) != len(images) {
			return nil, fmt.Errorf("embedding batch %d-%d returned %d vectors, want %d", start, end-1, len(batch), len(images))
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

// storeFrames replaces the video's previous generation of frames: index
// vectors are dropped, frame rows swapped in one transaction, then the new
// vectors upserted in batches.
func (w *Worker) storeFrames(ctx context.Context, videoID string, sampled []sampler.Frame, vectors [][]float32) (int, error) {
	if err := w.VectorIndex.DeleteByVideo(ctx, videoID); err != nil {
		return 0, fmt.Errorf("failed to delete previous vectors: %w", err)
	}

	rows := make([]*models.Frame, len(sampled))
	records := make([]models.VectorRecord, len(sampled))
	for i, f := range sampled {
		rows[i] = &models.Frame{
			VideoID:    videoID,
			FrameIndex: f.Index,
			Timestamp:  f.Timestamp,
			Embedding:  pgvector.NewVector(vectors[i]),
		}
		records[i] = models.VectorRecord{
			ID:         frames.VectorID(videoID, f.Index),
			VideoID:    videoID,
			FrameIndex: f.Index,
			Timestamp:  f.Timestamp,
			Values:     vectors[i],
		}
	}

	stored, err := w.FrameRepo.ReplaceForVideo(ctx, videoID, rows)
	if err != nil {
		return 0, fmt.Errorf("failed to store frame records: %w", err)
	}

	batchSize := max(w.cfg.Worker.IndexBatchSize, 1)
	for start := 0; start < len(records); start += batchSize {
		end := min(start+batchSize, len(records))
		if _, err := w.VectorIndex.Upsert(ctx, records[start:end]); err != nil {
			return 0, fmt.Errorf("failed to upsert vectors %d-%d: %w", start, end-1, err)
		}
	}
	metrics.FramesIndexedTotal.Add(float64(len(records)))
	w.logger.Infof("Stored %d frame embeddings for video %s", stored, videoID)
	return stored, nil
}
