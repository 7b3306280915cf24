package pipeline

import "errors"

var (
	// ErrDbClientRequired is returned when a database client is not provided.
	ErrDbClientRequired = errors.New("db client required")

	// ErrObjectClientRequired is returned when an object client is not provided.
	ErrObjectClientRequired = errors.New("object client required")

	// ErrEmbedderRequired is returned when an embedding provider is not provided.
	ErrEmbedderRequired = errors.New("embedding provider required")

	// ErrTranscriberRequired is returned when a transcriber is not provided.
	ErrTranscriberRequired = errors.New("transcriber required")

	// ErrConverterRequired is returned when a document converter is not provided.
	ErrConverterRequired = errors.New("document converter required")

	// ErrSegmenterRequired is returned when a media segmenter is not provided.
	ErrSegmenterRequired = errors.New("media segmenter required")
)
