package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const generationModel = "gemini-1.5-flash"

// Generator produces grounded answers from a prompt using a Gemini chat
// model. The system instruction is fixed at construction; callers pass the
// user prompt with retrieved context already inlined.
type Generator struct {
	client      *genai.Client
	model       string
	system      string
	temperature float32
}

func NewGenerator(ctx context.Context, apiKey, systemPrompt string, opts ...option.ClientOption) (*Generator, error) {
	opts = append(opts, option.WithAPIKey(apiKey))
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Generator{
		client:      client,
		model:       generationModel,
		system:      systemPrompt,
		temperature: 0.2,
	}, nil
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	slog.DebugContext(ctx, "generating answer", "model", g.model, "prompt_length", len(prompt))

	gm := g.client.GenerativeModel(g.model)
	gm.SetTemperature(g.temperature)
	if g.system != "" {
		gm.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(g.system)}}
	}

	resp, err := gm.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		slog.ErrorContext(ctx, "generation failed", "error", err)
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no candidates in generation response")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String(), nil
}

func (g *Generator) Close() error {
	return g.client.Close()
}
