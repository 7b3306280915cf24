package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/mediora-ai/mediora/internal/core"
)

// GeminiEmbedder produces text and multimodal embeddings with fixed,
// model-defined dimensionality.
type GeminiEmbedder struct {
	client          *genai.Client
	textModel       string
	multimodalModel string
}

var _ core.EmbeddingProvider = (*GeminiEmbedder)(nil)

func NewGeminiEmbedder(ctx context.Context, apiKey, textModel, multimodalModel string) (*GeminiEmbedder, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if textModel == "" {
		textModel = "text-embedding-004"
	}
	if multimodalModel == "" {
		multimodalModel = "multimodal-embedding-001"
	}
	return &GeminiEmbedder{client: cl, textModel: textModel, multimodalModel: multimodalModel}, nil
}

func (g *GeminiEmbedder) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// EmbedText embeds a single text.
func (g *GeminiEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	em := g.client.EmbeddingModel(g.textModel)
	resp, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embed text: %w", err)
	}
	if resp.Embedding == nil {
		return nil, fmt.Errorf("gemini embed text: empty response")
	}
	return resp.Embedding.Values, nil
}

// EmbedMedia embeds raw media bytes, optionally steered by a short context
// string (a scene description or transcript excerpt).
func (g *GeminiEmbedder) EmbedMedia(ctx context.Context, media []byte, mimeType, contextText string) ([]float32, error) {
	em := g.client.EmbeddingModel(g.multimodalModel)

	parts := []genai.Part{genai.Blob{MIMEType: mimeType, Data: media}}
	if contextText != "" {
		parts = append(parts, genai.Text(contextText))
	}

	resp, err := em.EmbedContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini embed media: %w", err)
	}
	if resp.Embedding == nil {
		return nil, fmt.Errorf("gemini embed media: empty response")
	}
	return resp.Embedding.Values, nil
}

// EmbedTexts batches multiple texts in one request via EmbeddingBatch.
func (g *GeminiEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	em := g.client.EmbeddingModel(g.textModel)

	batch := em.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}

	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("gemini batch embed: %w", err)
	}

	out := make([][]float32, 0, len(resp.Embeddings))
	for _, e := range resp.Embeddings {
		out = append(out, e.Values)
	}
	if len(out) != len(texts) {
		return nil, fmt.Errorf("gemini batch embed: got %d embeddings for %d texts", len(out), len(texts))
	}
	return out, nil
}
