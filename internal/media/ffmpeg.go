package media

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"github.com/mediora-ai/mediora/internal/core"
)

// Tool invokes the external transcode binaries as subprocesses. A non-zero
// exit is terminal for that operation: the input is presumed malformed or
// the encoding settings unattainable, and retrying cannot help.
type Tool struct {
	ffmpegPath  string
	ffprobePath string
	log         *slog.Logger
}

func NewTool(ffmpegPath, ffprobePath string, logger *slog.Logger) *Tool {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tool{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath, log: logger}
}

// Duration probes the media duration in seconds.
func (t *Tool) Duration(ctx context.Context, path string) (float64, error) {
	out, err := t.run(ctx, t.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, err
	}
	s := strings.TrimSpace(string(out))
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, core.Terminalf("ffprobe returned unparsable duration %q: %w", s, err)
	}
	return d, nil
}

// Encode runs ffmpeg with the given arguments.
func (t *Tool) Encode(ctx context.Context, args ...string) error {
	_, err := t.run(ctx, t.ffmpegPath, args...)
	return err
}

func (t *Tool) run(ctx context.Context, bin string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	t.log.Debug("running transcode tool", "bin", bin, "args", strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, core.Terminalf("%s failed: %w: %s", bin, err, firstLine(stderr.String()))
	}
	return stdout.Bytes(), nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		// ffmpeg stderr is chatty; the tail usually carries the cause.
		lines := strings.Split(s, "\n")
		return strings.TrimSpace(lines[len(lines)-1])
	}
	return s
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
