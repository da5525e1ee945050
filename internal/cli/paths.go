package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mgpai22/bilisub/internal/subtitle"
)

// <dir>/<bvid>[_p<n>]<ext>, pages are numbered from 1 in file names
func fetchOutputPath(dir, bvid string, pageIndex int, format subtitle.Format) string {
	name := bvid
	if pageIndex > 0 {
		name = fmt.Sprintf("%s_p%d", bvid, pageIndex+1)
	}
	return filepath.Join(dir, name+subtitle.ExtensionForFormat(format))
}

// the input path with its extension replaced by .txt
func extractOutputPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".txt"
}

// the media path with its extension replaced by the subtitle extension
func transcribeOutputPath(media string, format subtitle.Format) string {
	return strings.TrimSuffix(media, filepath.Ext(media)) + subtitle.ExtensionForFormat(format)
}

// the -f flag, else the extension of the -o path, else the configured format
func outputFormat(flagValue, outputPath, fallback string) (subtitle.Format, error) {
	if flagValue != "" {
		format, ok := subtitle.ParseFormat(flagValue)
		if !ok {
			return "", fmt.Errorf("unsupported format %q: use ass, srt, or vtt", flagValue)
		}
		return format, nil
	}
	if outputPath != "" {
		if format, ok := subtitle.FormatFromPath(outputPath); ok {
			return format, nil
		}
	}
	if format, ok := subtitle.ParseFormat(fallback); ok {
		return format, nil
	}
	return subtitle.FormatASS, nil
}

// extracted text goes next to the subtitle unless that would replace it
func fetchExtractPath(subtitlePath string) string {
	textPath := extractOutputPath(subtitlePath)
	if samePath(textPath, subtitlePath) {
		textPath = strings.TrimSuffix(subtitlePath, filepath.Ext(subtitlePath)) + ".extracted.txt"
	}
	return textPath
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
