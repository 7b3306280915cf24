package core

import (
	"context"
	"time"
)

// EmbeddingProvider produces fixed-length vectors for text or media.
type EmbeddingProvider interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts embeds a batch of texts in one request, returning one
	// vector per input in input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedMedia embeds raw media bytes; contextText optionally steers the
	// multimodal embedding and may be empty.
	EmbedMedia(ctx context.Context, media []byte, mimeType, contextText string) ([]float32, error)
}

// Transcript is the output of a transcription call. Empty Text means the
// input had no recognizable speech; that is not an error.
type Transcript struct {
	Text      string
	Language  string
	Model     string
	Timestamp time.Time
}

// Transcriber produces transcripts and scene descriptions for media segments.
type Transcriber interface {
	Transcribe(ctx context.Context, media []byte, mimeType, languageHint string) (*Transcript, error)
	Describe(ctx context.Context, media []byte, mimeType string) (string, error)
}

// DocumentBlock is one ordered unit of converted document text.
type DocumentBlock struct {
	Text  string
	Pages []int
}

// DocumentConverter turns raw document bytes into ordered text blocks.
// Treated as a black box; only the output shape matters here.
type DocumentConverter interface {
	ConvertAndChunk(ctx context.Context, doc []byte, contentType string) ([]DocumentBlock, error)
}
