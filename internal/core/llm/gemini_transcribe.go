package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/mediora-ai/mediora/internal/core"
)

const transcribePrompt = "Transcribe all spoken words in this media verbatim. " +
	"Return only the transcript text with no commentary. " +
	"If there is no recognizable speech, return an empty response."

const describePrompt = "Describe what this media shows in two or three sentences. " +
	"Mention the setting, visible subjects and any on-screen text. " +
	"Return only the description."

// GeminiTranscriber produces transcripts and scene descriptions for media
// segments through a generative model.
type GeminiTranscriber struct {
	client    *genai.Client
	modelName string
}

var _ core.Transcriber = (*GeminiTranscriber)(nil)

func NewGeminiTranscriber(ctx context.Context, apiKey, modelName string) (*GeminiTranscriber, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &GeminiTranscriber{client: cl, modelName: modelName}, nil
}

func (g *GeminiTranscriber) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// Transcribe returns the transcript for a media segment. Segments with no
// recognizable speech yield an empty transcript, not an error.
func (g *GeminiTranscriber) Transcribe(ctx context.Context, media []byte, mimeType, languageHint string) (*core.Transcript, error) {
	prompt := transcribePrompt
	if languageHint != "" {
		prompt += " The spoken language is likely " + languageHint + "."
	}

	text, err := g.generate(ctx, media, mimeType, prompt)
	if err != nil {
		return nil, fmt.Errorf("gemini transcribe: %w", err)
	}

	return &core.Transcript{
		Text:      strings.TrimSpace(text),
		Language:  languageHint,
		Model:     g.modelName,
		Timestamp: time.Now().UTC(),
	}, nil
}

// Describe returns a short scene description used as embedding context.
func (g *GeminiTranscriber) Describe(ctx context.Context, media []byte, mimeType string) (string, error) {
	text, err := g.generate(ctx, media, mimeType, describePrompt)
	if err != nil {
		return "", fmt.Errorf("gemini describe: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (g *GeminiTranscriber) generate(ctx context.Context, media []byte, mimeType, prompt string) (string, error) {
	m := g.client.GenerativeModel(g.modelName)

	resp, err := m.GenerateContent(ctx,
		genai.Blob{MIMEType: mimeType, Data: media},
		genai.Text(prompt),
	)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String(), nil
}
