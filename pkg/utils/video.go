package utils

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FileExtension returns the lower-cased extension of filename without the dot.
func FileExtension(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

func IsSupportedFormat(ext string, supported []string) bool {
	for _, f := range supported {
		if strings.EqualFold(f, ext) {
			return true
		}
	}
	return false
}

// FormatTimestamp renders seconds as m:ss.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// VideoStorageKey is the blob key under which an uploaded video is stored.
func VideoStorageKey(videoID, ext string) string {
	return fmt.Sprintf("videos/%s.%s", videoID, ext)
}
