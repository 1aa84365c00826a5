package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/amankumarsingh77/frame-search/internal/config"
	"github.com/amankumarsingh77/frame-search/internal/embedding"
	"github.com/amankumarsingh77/frame-search/internal/frames"
	"github.com/amankumarsingh77/frame-search/internal/jobs"
	"github.com/amankumarsingh77/frame-search/internal/queue"
	"github.com/amankumarsingh77/frame-search/internal/sampler"
	"github.com/amankumarsingh77/frame-search/internal/videofiles"
	"github.com/amankumarsingh77/frame-search/pkg/logger"
)

var (
	// ErrTooManyConsecutiveErrors stops Run when the queue keeps failing.
	ErrTooManyConsecutiveErrors = errors.New("too many consecutive worker loop errors")

	errStaleDelivery = errors.New("job already finished")
)

// Deps are the collaborators a Worker is built from. All fields are required.
type Deps struct {
	Queue        queue.Queue
	Orchestrator jobs.Orchestrator
	VideoRepo    videofiles.Repository
	AWSRepo      videofiles.AWSRepository
	FrameRepo    frames.Repository
	VectorIndex  frames.VectorIndex
	Sampler      sampler.Sampler
	Model        embedding.Model
}

// Worker consumes work messages one at a time and indexes the frames of the
// referenced video.
type Worker struct {
	cfg    *config.Config
	logger logger.Logger
	Deps

	stopping atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}

	cpuGate func(maxUsage float64) (bool, float64)
	now     func() time.Time
}

type pipelineResult struct {
	framesProcessed  int
	embeddingsStored int
	duration         float64
}

// HealthChecker is satisfied by anything that can report reachability.
type HealthChecker interface {
	PingContext(ctx context.Context) error
}
