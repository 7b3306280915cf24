package models

import "fmt"

// ContentKind discriminates the per-content-type metadata variants.
type ContentKind string

const (
	KindVideo    ContentKind = "video"
	KindAudio    ContentKind = "audio"
	KindImage    ContentKind = "image"
	KindDocument ContentKind = "document"
)

// ChunkMetadata is a tagged variant: which fields are meaningful depends on
// Kind. Construct through the typed constructors so invalid shapes never
// reach storage; the whole struct round-trips through one JSONB column.
type ChunkMetadata struct {
	Kind         ContentKind `json:"kind"`
	SegmentIndex int         `json:"segment_index,omitempty"`
	StartSec     float64     `json:"start_sec,omitempty"`
	EndSec       float64     `json:"end_sec,omitempty"`
	Pages        []int       `json:"pages,omitempty"`
	FileName     string      `json:"file_name,omitempty"`
}

// VideoSegmentMetadata builds metadata for one encoded video segment.
func VideoSegmentMetadata(segmentIndex int, startSec, endSec float64) (ChunkMetadata, error) {
	m := ChunkMetadata{Kind: KindVideo, SegmentIndex: segmentIndex, StartSec: startSec, EndSec: endSec}
	return m, m.Validate()
}

// AudioSegmentMetadata builds metadata for one re-encoded audio segment.
func AudioSegmentMetadata(segmentIndex int, startSec, endSec float64) (ChunkMetadata, error) {
	m := ChunkMetadata{Kind: KindAudio, SegmentIndex: segmentIndex, StartSec: startSec, EndSec: endSec}
	return m, m.Validate()
}

// DocumentMetadata builds metadata for a text chunk covering the given pages.
func DocumentMetadata(pages []int) (ChunkMetadata, error) {
	m := ChunkMetadata{Kind: KindDocument, Pages: pages}
	return m, m.Validate()
}

// ImageMetadata builds metadata for an image chunk.
func ImageMetadata(fileName string) (ChunkMetadata, error) {
	m := ChunkMetadata{Kind: KindImage, FileName: fileName}
	return m, m.Validate()
}

func (m ChunkMetadata) Validate() error {
	switch m.Kind {
	case KindVideo, KindAudio:
		if m.SegmentIndex < 0 {
			return fmt.Errorf("%s metadata: negative segment index %d", m.Kind, m.SegmentIndex)
		}
		if m.StartSec < 0 || m.EndSec <= m.StartSec {
			return fmt.Errorf("%s metadata: bad segment bounds [%v, %v)", m.Kind, m.StartSec, m.EndSec)
		}
	case KindImage:
		if m.FileName == "" {
			return fmt.Errorf("image metadata: file name required")
		}
	case KindDocument:
		for _, p := range m.Pages {
			if p < 1 {
				return fmt.Errorf("document metadata: bad page number %d", p)
			}
		}
	default:
		return fmt.Errorf("unknown metadata kind %q", m.Kind)
	}
	return nil
}
