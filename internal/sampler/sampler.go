package sampler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/amankumarsingh77/frame-search/pkg/logger"
	"github.com/disintegration/imaging"
)

var ErrNoFrames = errors.New("no frames sampled from video")

// Frame is one sampled frame. Index is its position in the sampled sequence,
// Image a JPEG encoding of the (possibly downscaled) picture.
type Frame struct {
	Index     int
	Timestamp float64
	Image     []byte
}

type Result struct {
	Frames      []Frame
	TotalFrames int
	FPS         float64
	// Duration is TotalFrames / FPS, or 0 when the frame rate is unknown.
	Duration float64
}

// Sampler decodes a video and returns every stride-th frame, starting at
// source frame 0.
type Sampler interface {
	Sample(ctx context.Context, videoPath, workDir string, stride int) (*Result, error)
}

type ffmpegSampler struct {
	maxSide int
	logger  logger.Logger
}

// NewFFmpegSampler samples with the ffprobe and ffmpeg binaries found in PATH.
// Frames larger than maxSide on either axis are downscaled; 0 keeps the
// decoded size.
func NewFFmpegSampler(maxSide int, log logger.Logger) Sampler {
	return &ffmpegSampler{maxSide: maxSide, logger: log}
}

func (s *ffmpegSampler) Sample(ctx context.Context, videoPath, workDir string, stride int) (*Result, error) {
	if stride < 1 {
		return nil, fmt.Errorf("invalid sample stride %d", stride)
	}
	info, err := s.probe(ctx, videoPath)
	if err != nil {
		return nil, err
	}
	s.logger.Infof("Sampling video: %d frames, %.2f FPS, %.2fs", info.totalFrames, info.fps, info.duration())

	frameDir := filepath.Join(workDir, "frames")
	if err := os.MkdirAll(frameDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create frame directory: %w", err)
	}
	paths, err := s.extract(ctx, videoPath, frameDir, stride)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, ErrNoFrames
	}

	images := make([][]byte, 0, len(paths))
	for _, p := range paths {
		data, err := s.loadFrame(p)
		if err != nil {
			return nil, err
		}
		images = append(images, data)
	}

	s.logger.Infof("Extracted %d frames from %d total frames", len(images), info.totalFrames)
	return &Result{
		Frames:      buildFrames(images, stride, info.fps),
		TotalFrames: info.totalFrames,
		FPS:         info.fps,
		Duration:    info.duration(),
	}, nil
}

func (s *ffmpegSampler) extract(ctx context.Context, videoPath, frameDir string, stride int) ([]string, error) {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-v", "error",
		"-i", videoPath,
		"-vf", fmt.Sprintf("select=not(mod(n\\,%d))", stride),
		"-vsync", "vfr",
		"-q:v", "2",
		"-y",
		filepath.Join(frameDir, "frame_%06d.jpg"),
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg frame extraction failed: %v, stderr: %s", err, stderr.String())
	}

	paths, err := filepath.Glob(filepath.Join(frameDir, "frame_*.jpg"))
	if err != nil {
		return nil, fmt.Errorf("failed to list extracted frames: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *ffmpegSampler) loadFrame(path string) ([]byte, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open frame %s: %w", filepath.Base(path), err)
	}
	img = fitFrame(img, s.maxSide)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("failed to encode frame %s: %w", filepath.Base(path), err)
	}
	return buf.Bytes(), nil
}

func fitFrame(img image.Image, maxSide int) image.Image {
	if maxSide <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= maxSide && b.Dy() <= maxSide {
		return img
	}
	return imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)
}

type videoInfo struct {
	fps         float64
	totalFrames int
}

func (v videoInfo) duration() float64 {
	if v.fps <= 0 {
		return 0
	}
	return float64(v.totalFrames) / v.fps
}

func (s *ffmpegSampler) probe(ctx context.Context, videoPath string) (videoInfo, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-count_packets",
		"-show_entries", "stream=r_frame_rate,avg_frame_rate,nb_frames,nb_read_packets",
		"-of", "json",
		videoPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return videoInfo{}, fmt.Errorf("ffprobe error: %v, stderr: %s", err, stderr.String())
	}
	return parseProbe(output)
}

type probeOutput struct {
	Streams []struct {
		RFrameRate    string `json:"r_frame_rate"`
		AvgFrameRate  string `json:"avg_frame_rate"`
		NbFrames      string `json:"nb_frames"`
		NbReadPackets string `json:"nb_read_packets"`
	} `json:"streams"`
}

func parseProbe(data []byte) (videoInfo, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return videoInfo{}, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	if len(out.Streams) == 0 {
		return videoInfo{}, errors.New("no video stream found")
	}
	st := out.Streams[0]

	var info videoInfo
	for _, rate := range []string{st.AvgFrameRate, st.RFrameRate} {
		if fps, err := parseFrameRate(rate); err == nil && fps > 0 {
			info.fps = fps
			break
		}
	}
	// nb_frames is missing from some containers; the packet count is not.
	for _, n := range []string{st.NbReadPackets, st.NbFrames} {
		if v, err := strconv.Atoi(n); err == nil && v > 0 {
			info.totalFrames = v
			break
		}
	}
	return info, nil
}

// parseFrameRate reads ffprobe rationals such as "30000/1001" or "25".
func parseFrameRate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return strconv.ParseFloat(s, 64)
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frame rate %q: %w", s, err)
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frame rate %q: %w", s, err)
	}
	if d == 0 {
		return 0, fmt.Errorf("invalid frame rate %q: zero denominator", s)
	}
	return n / d, nil
}

// buildFrames numbers sampled images by position. The i-th image is source
// frame i*stride, so its timestamp is i*stride/fps (or the source frame
// number when the rate is unknown).
func buildFrames(images [][]byte, stride int, fps float64) []Frame {
	frames := make([]Frame, len(images))
	for i, img := range images {
		src := float64(i * stride)
		ts := src
		if fps > 0 {
			ts = src / fps
		}
		frames[i] = Frame{Index: i, Timestamp: ts, Image: img}
	}
	return frames
}
