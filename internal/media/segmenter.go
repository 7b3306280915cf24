// Package media plans fixed-duration segments for time-based files and
// produces encoded segment files sized for the downstream embedding API.
package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mediora-ai/mediora/internal/core"
)

const (
	// VideoSegmentMIME is the container every encoded video segment uses.
	VideoSegmentMIME = "video/mp4"
	// AudioSegmentMIME is the container every re-encoded audio segment uses.
	AudioSegmentMIME = "audio/mpeg"
)

// crfLadder is tried in order of ascending perceptual loss before any
// resolution is sacrificed.
var crfLadder = []int{28, 32, 36}

// downscaleLadder pairs target heights with maximal compression, used only
// when the quality ladder alone cannot meet the byte ceiling.
var downscaleLadder = []int{720, 480, 360}

const downscaleCRF = 40

// Segment is one encoded time-slice on disk.
type Segment struct {
	Window
	Path string
	Size int64
}

// Segmenter turns a source file into encoded segments.
type Segmenter struct {
	tool *Tool

	SegmentSeconds    float64
	MinSegmentSeconds float64
	VideoByteCeiling  int64

	log *slog.Logger
}

func NewSegmenter(tool *Tool, segmentSeconds, minSegmentSeconds float64, videoByteCeiling int64, logger *slog.Logger) *Segmenter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Segmenter{
		tool:              tool,
		SegmentSeconds:    segmentSeconds,
		MinSegmentSeconds: minSegmentSeconds,
		VideoByteCeiling:  videoByteCeiling,
		log:               logger,
	}
}

// Plan probes the source duration and returns the segment windows.
func (s *Segmenter) Plan(ctx context.Context, src string) ([]Window, error) {
	total, err := s.tool.Duration(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("probe duration: %w", err)
	}
	return PlanWindows(total, s.SegmentSeconds, s.MinSegmentSeconds), nil
}

// EncodeVideoSegment extracts one window from src and compresses it under
// the byte ceiling. The quality ladder is tried first; if no quality
// setting suffices the downscale ladder runs at maximal compression. Both
// ladders exhausted is terminal: retrying cannot shrink the segment.
func (s *Segmenter) EncodeVideoSegment(ctx context.Context, src, dir string, w Window) (*Segment, error) {
	for _, crf := range crfLadder {
		seg, err := s.tryVideoEncode(ctx, src, dir, w, crf, 0)
		if err != nil {
			return nil, err
		}
		if seg != nil {
			return seg, nil
		}
	}
	for _, height := range downscaleLadder {
		seg, err := s.tryVideoEncode(ctx, src, dir, w, downscaleCRF, height)
		if err != nil {
			return nil, err
		}
		if seg != nil {
			return seg, nil
		}
	}
	return nil, core.Terminalf("segment %d: still over %d bytes after exhausting quality and downscale ladders", w.Index, s.VideoByteCeiling)
}

// tryVideoEncode produces one candidate. A nil, nil return means the
// candidate exceeded the ceiling and the next ladder rung should run.
func (s *Segmenter) tryVideoEncode(ctx context.Context, src, dir string, w Window, crf, height int) (*Segment, error) {
	out := filepath.Join(dir, fmt.Sprintf("video_%03d_crf%d_h%d.mp4", w.Index, crf, height))

	args := []string{
		"-y", "-v", "error",
		"-ss", formatSeconds(w.Start),
		"-t", formatSeconds(w.Duration()),
		"-i", src,
	}
	if height > 0 {
		args = append(args, "-vf", "scale=-2:"+strconv.Itoa(height))
	}
	args = append(args,
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", strconv.Itoa(crf),
		"-c:a", "aac",
		"-b:a", "64k",
		"-movflags", "+faststart",
		out,
	)

	if err := s.tool.Encode(ctx, args...); err != nil {
		return nil, err
	}

	info, err := os.Stat(out)
	if err != nil {
		return nil, fmt.Errorf("stat encoded segment: %w", err)
	}
	if info.Size() > s.VideoByteCeiling {
		s.log.Debug("segment candidate over ceiling",
			"segment", w.Index, "crf", crf, "height", height,
			"size", info.Size(), "ceiling", s.VideoByteCeiling)
		_ = os.Remove(out)
		return nil, nil
	}
	return &Segment{Window: w, Path: out, Size: info.Size()}, nil
}

// EncodeAudioSegment re-encodes one window to the fixed mono/16 kHz
// profile. Audio segments are inherently small; no adaptive sizing needed.
func (s *Segmenter) EncodeAudioSegment(ctx context.Context, src, dir string, w Window) (*Segment, error) {
	out := filepath.Join(dir, fmt.Sprintf("audio_%03d.mp3", w.Index))

	err := s.tool.Encode(ctx,
		"-y", "-v", "error",
		"-ss", formatSeconds(w.Start),
		"-t", formatSeconds(w.Duration()),
		"-i", src,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "libmp3lame",
		"-b:a", "32k",
		out,
	)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(out)
	if err != nil {
		return nil, fmt.Errorf("stat encoded segment: %w", err)
	}
	return &Segment{Window: w, Path: out, Size: info.Size()}, nil
}
