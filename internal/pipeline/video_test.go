package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediora-ai/mediora/internal/media"
	"github.com/mediora-ai/mediora/internal/models"
)

func TestAssembleSegmentChunks_OrdinalsCompactOverDroppedSegment(t *testing.T) {
	// Segment 1 of a 4-window video failed within tolerance; the survivors
	// arrive in time order with their original window indexes.
	results := []segmentResult{
		{window: media.Window{Index: 0, Start: 0, End: 30}, text: "intro", textEmb: []float32{0.1}, mmEmb: []float32{0.2}},
		{window: media.Window{Index: 2, Start: 60, End: 90}, text: "middle", textEmb: []float32{0.3}, mmEmb: []float32{0.4}},
		{window: media.Window{Index: 3, Start: 90, End: 107}, text: "outro", textEmb: []float32{0.5}, mmEmb: []float32{0.6}},
	}

	chunks, err := assembleSegmentChunks("doc-1", models.KindVideo, results)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	for i, c := range chunks {
		assert.Equal(t, i, c.OrdinalIndex, "ordinals are 0-based and contiguous")
		assert.Equal(t, "doc-1", c.DocumentID)
		assert.Equal(t, models.KindVideo, c.Metadata.Kind)
		assert.NoError(t, c.Validate())
	}

	// Metadata keeps the source window position even where ordinals compact.
	assert.Equal(t, 2, chunks[1].Metadata.SegmentIndex)
	assert.Equal(t, 60.0, chunks[1].Metadata.StartSec)
	assert.Equal(t, 90.0, chunks[1].Metadata.EndSec)
	assert.Equal(t, 3, chunks[2].Metadata.SegmentIndex)
}

func TestAssembleSegmentChunks_SilentAudioSegment(t *testing.T) {
	// The 47s/30s case: two windows, the second had no recognizable speech.
	results := []segmentResult{
		{window: media.Window{Index: 0, Start: 0, End: 30}, text: "spoken words", textEmb: []float32{0.1}},
		{window: media.Window{Index: 1, Start: 30, End: 47}, silent: true},
	}

	chunks, err := assembleSegmentChunks("doc-1", models.KindAudio, results)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, models.KindAudio, chunks[0].Metadata.Kind)
	assert.Equal(t, "spoken words", chunks[0].Text)
	assert.NoError(t, chunks[0].Validate())

	silent := chunks[1]
	assert.True(t, silent.Silent)
	assert.Empty(t, silent.Text)
	assert.Empty(t, silent.TextEmbedding)
	assert.Empty(t, silent.MultimodalEmbedding)
	assert.Equal(t, 1, silent.OrdinalIndex)
	assert.Equal(t, 47.0, silent.Metadata.EndSec)
	assert.NoError(t, silent.Validate(), "silent chunks pass the embedding invariant")
}

func TestAssembleSegmentChunks_RejectsNonSegmentKind(t *testing.T) {
	results := []segmentResult{
		{window: media.Window{Index: 0, Start: 0, End: 30}, textEmb: []float32{0.1}},
	}
	_, err := assembleSegmentChunks("doc-1", models.KindImage, results)
	assert.Error(t, err)
}
