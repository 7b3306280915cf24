// Package router classifies a file into one of the supported content types.
// Classification is pure (no I/O) so it can run before any download or
// allocation happens for the job.
package router

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/mediora-ai/mediora/internal/core"
)

// ContentType is the processing family a file belongs to.
type ContentType string

const (
	Video    ContentType = "video"
	Audio    ContentType = "audio"
	Image    ContentType = "image"
	Document ContentType = "document"
)

var extensionTable = map[string]ContentType{
	".mp4":  Video,
	".mov":  Video,
	".avi":  Video,
	".mkv":  Video,
	".webm": Video,
	".m4v":  Video,
	".mpeg": Video,

	".mp3":  Audio,
	".wav":  Audio,
	".m4a":  Audio,
	".flac": Audio,
	".ogg":  Audio,
	".aac":  Audio,
	".wma":  Audio,

	".jpg":  Image,
	".jpeg": Image,
	".png":  Image,
	".gif":  Image,
	".webp": Image,
	".bmp":  Image,
	".tiff": Image,

	".pdf":  Document,
	".doc":  Document,
	".docx": Document,
	".txt":  Document,
	".md":   Document,
	".rtf":  Document,
	".html": Document,
	".htm":  Document,
	".pptx": Document,
	".xlsx": Document,
	".csv":  Document,
}

// Classify resolves a content type from the file path's extension first and
// the optional MIME hint second. Files that resolve through neither signal
// fail with ErrUnsupportedType, which is terminal and never retried.
func Classify(path, hintMIME string) (ContentType, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := extensionTable[ext]; ok {
		return ct, nil
	}
	if ct, ok := classifyMIME(hintMIME); ok {
		return ct, nil
	}
	return "", fmt.Errorf("%w: path=%q mime=%q", core.ErrUnsupportedType, path, hintMIME)
}

// ClassifyBytes sniffs a content type from an in-memory prefix of the file.
// Still pure: mimetype works on the provided bytes only.
func ClassifyBytes(head []byte) (ContentType, error) {
	mt := mimetype.Detect(head)
	if ct, ok := classifyMIME(mt.String()); ok {
		return ct, nil
	}
	return "", fmt.Errorf("%w: sniffed mime=%q", core.ErrUnsupportedType, mt.String())
}

func classifyMIME(m string) (ContentType, bool) {
	m = strings.ToLower(strings.TrimSpace(m))
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = strings.TrimSpace(m[:i])
	}
	switch {
	case m == "":
		return "", false
	case strings.HasPrefix(m, "video/"):
		return Video, true
	case strings.HasPrefix(m, "audio/"):
		return Audio, true
	case strings.HasPrefix(m, "image/"):
		return Image, true
	case strings.HasPrefix(m, "text/"):
		return Document, true
	}
	switch m {
	case "application/pdf",
		"application/msword",
		"application/rtf",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return Document, true
	}
	return "", false
}
