package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
)

// ErrNotFound is returned when a binary is neither configured nor on PATH.
var ErrNotFound = errors.New("binary not found")

type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

var (
	resolveOnce sync.Once
	resolved    BinaryPaths
)

// Resolve looks the binaries up once. BILISUB_FFMPEG_PATH and
// BILISUB_FFPROBE_PATH win over PATH.
func Resolve() BinaryPaths {
	resolveOnce.Do(func() {
		resolved = BinaryPaths{
			FFmpeg:  lookup("BILISUB_FFMPEG_PATH", "ffmpeg"),
			FFprobe: lookup("BILISUB_FFPROBE_PATH", "ffprobe"),
		}
	})
	return resolved
}

func FFmpegPath() (string, error) {
	path := Resolve().FFmpeg
	if path == "" {
		return "", fmt.Errorf("ffmpeg: %w (install ffmpeg or set BILISUB_FFMPEG_PATH)", ErrNotFound)
	}
	return path, nil
}

func FFprobePath() (string, error) {
	path := Resolve().FFprobe
	if path == "" {
		return "", fmt.Errorf("ffprobe: %w (install ffmpeg or set BILISUB_FFPROBE_PATH)", ErrNotFound)
	}
	return path, nil
}

func lookup(envKey, name string) string {
	if path := os.Getenv(envKey); path != "" {
		return path
	}
	if found, err := exec.LookPath(name); err == nil {
		return found
	}
	return ""
}
