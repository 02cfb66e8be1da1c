package reranker

import (
	"context"
	"fmt"
	"sync"

	"finrag/internal/settings"
)

// DynamicClient resolves the rerank provider and API key from settings per
// call, rebuilding the underlying client only when either changes.
type DynamicClient struct {
	settingsSvc *settings.Service

	mu              sync.Mutex
	client          *Client
	currentProvider string
	currentKey      string
}

func NewDynamicClient(svc *settings.Service) *DynamicClient {
	return &DynamicClient{settingsSvc: svc}
}

func (d *DynamicClient) Rerank(ctx context.Context, query string, docs []string) ([]int, error) {
	s, err := d.settingsSvc.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	if s.RerankProvider == "" || s.RerankProvider == "none" {
		return identity(len(docs)), nil
	}

	return d.getClient(s.RerankProvider, s.RerankAPIKey).Rerank(ctx, query, docs)
}

func (d *DynamicClient) getClient(provider, key string) *Client {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client != nil && d.currentProvider == provider && d.currentKey == key {
		return d.client
	}

	d.client = NewClient(provider, key)
	d.currentProvider = provider
	d.currentKey = key
	return d.client
}
