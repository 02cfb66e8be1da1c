package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"finrag/internal/settings"
)

// DynamicGenerator resolves the Gemini API key from settings on every call,
// mirroring DynamicEmbedder, so key rotation applies without a restart.
type DynamicGenerator struct {
	settingsSvc *settings.Service
	system      string
	client      *genai.Client
	currentKey  string
	mu          sync.RWMutex
	clientOpts  []option.ClientOption
}

func NewDynamicGenerator(svc *settings.Service, systemPrompt string, opts ...option.ClientOption) *DynamicGenerator {
	return &DynamicGenerator{
		settingsSvc: svc,
		system:      systemPrompt,
		clientOpts:  opts,
	}
}

func (g *DynamicGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	client, err := g.resolveClient(ctx)
	if err != nil {
		return "", err
	}

	gm := client.GenerativeModel(generationModel)
	gm.SetTemperature(0.2)
	if g.system != "" {
		gm.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(g.system)}}
	}

	resp, err := gm.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
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

func (g *DynamicGenerator) resolveClient(ctx context.Context) (*genai.Client, error) {
	s, err := g.settingsSvc.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	if s.GeminiAPIKey == "" {
		return nil, fmt.Errorf("gemini api key not configured")
	}

	return g.getClient(ctx, s.GeminiAPIKey)
}

func (g *DynamicGenerator) getClient(ctx context.Context, key string) (*genai.Client, error) {
	g.mu.RLock()
	if g.client != nil && g.currentKey == key {
		defer g.mu.RUnlock()
		return g.client, nil
	}
	g.mu.RUnlock()

	g.mu.Lock()
	defer g.mu.Unlock()

	// Double check
	if g.client != nil && g.currentKey == key {
		return g.client, nil
	}

	if g.client != nil {
		if err := g.client.Close(); err != nil {
			slog.Warn("failed to close previous genai client", "error", err)
		}
	}

	opts := append(g.clientOpts, option.WithAPIKey(key))
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	g.client = client
	g.currentKey = key
	return client, nil
}
