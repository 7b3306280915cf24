package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobStatusTerminal(t *testing.T) {
	assert.False(t, JobPending.Terminal())
	assert.False(t, JobProcessing.Terminal())
	assert.True(t, JobProcessed.Terminal())
	assert.True(t, JobError.Terminal())
}

func TestChunkDocumentID(t *testing.T) {
	docID := "doc-1"
	empty := ""

	tests := []struct {
		name string
		job  ProcessingJob
		want string
	}{
		{
			name: "document id set",
			job:  ProcessingJob{JobID: "job-1", DocumentID: &docID},
			want: "doc-1",
		},
		{
			name: "nil document id falls back to job id",
			job:  ProcessingJob{JobID: "job-1"},
			want: "job-1",
		},
		{
			name: "empty document id falls back to job id",
			job:  ProcessingJob{JobID: "job-1", DocumentID: &empty},
			want: "job-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.job.ChunkDocumentID())
		})
	}
}

func TestChunkValidate(t *testing.T) {
	meta, err := AudioSegmentMetadata(0, 0, 30)
	require.NoError(t, err)

	tests := []struct {
		name    string
		chunk   Chunk
		wantErr bool
	}{
		{
			name:  "text embedding present",
			chunk: Chunk{TextEmbedding: []float32{0.1}, Metadata: meta},
		},
		{
			name:  "multimodal embedding present",
			chunk: Chunk{MultimodalEmbedding: []float32{0.1}, Metadata: meta},
		},
		{
			name:  "silent chunk needs no embedding",
			chunk: Chunk{Silent: true, Metadata: meta},
		},
		{
			name:    "no embedding and not silent",
			chunk:   Chunk{Text: "spoken words", Metadata: meta},
			wantErr: true,
		},
		{
			name:    "invalid metadata rejected",
			chunk:   Chunk{TextEmbedding: []float32{0.1}, Metadata: ChunkMetadata{Kind: "bogus"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.chunk.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMetadataConstructors(t *testing.T) {
	m, err := VideoSegmentMetadata(2, 60, 90)
	require.NoError(t, err)
	assert.Equal(t, KindVideo, m.Kind)
	assert.Equal(t, 2, m.SegmentIndex)

	_, err = VideoSegmentMetadata(-1, 0, 30)
	assert.Error(t, err)

	_, err = AudioSegmentMetadata(0, 30, 30)
	assert.Error(t, err, "empty half-open interval is invalid")

	_, err = AudioSegmentMetadata(0, 40, 30)
	assert.Error(t, err)

	m, err = DocumentMetadata([]int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, KindDocument, m.Kind)

	_, err = DocumentMetadata([]int{0})
	assert.Error(t, err)

	m, err = ImageMetadata("photo.png")
	require.NoError(t, err)
	assert.Equal(t, KindImage, m.Kind)

	_, err = ImageMetadata("")
	assert.Error(t, err)
}
