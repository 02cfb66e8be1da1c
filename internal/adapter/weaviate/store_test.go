package weaviate_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"

	adapter "finrag/internal/adapter/weaviate"
	"finrag/internal/chunking"
	"finrag/internal/vectorstore"
)

func mockWeaviate(t *testing.T, handler http.HandlerFunc) (*weaviate.Client, *httptest.Server) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/meta" {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"version": "1.19.0"}`))
			return
		}
		handler(w, r)
	}))
	cfg := weaviate.Config{Host: ts.Listener.Addr().String(), Scheme: "http"}
	client, err := weaviate.NewClient(cfg)
	assert.NoError(t, err)
	return client, ts
}

func TestStore_Add(t *testing.T) {
	client, ts := mockWeaviate(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/batch/objects", r.URL.Path)
		assert.Equal(t, "POST", r.Method)

		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		objects := body["objects"].([]interface{})
		require.Len(t, objects, 2)

		first := objects[0].(map[string]interface{})
		assert.Equal(t, "FinancialChunk", first["class"])
		props := first["properties"].(map[string]interface{})
		assert.Equal(t, "net sales increased", props["content"])
		assert.Equal(t, "AAPL", props["ticker"])
		assert.Equal(t, "sec_filing", props["docType"])

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"id": "11111111-1111-1111-1111-111111111111"},
			{"id": "22222222-2222-2222-2222-222222222222"},
		})
	})
	defer ts.Close()

	store := adapter.NewStore(client)
	n, err := store.Add(context.Background(), []vectorstore.Record{
		{
			ID:        "11111111-1111-1111-1111-111111111111",
			Text:      "net sales increased",
			Embedding: []float32{0.1, 0.2},
			Metadata:  chunking.ChunkMetadata{Ticker: "AAPL", DocType: chunking.DocTypeSECFiling},
		},
		{
			ID:        "22222222-2222-2222-2222-222222222222",
			Text:      "gross margin expanded",
			Embedding: []float32{0.3, 0.4},
			Metadata:  chunking.ChunkMetadata{Ticker: "AAPL", DocType: chunking.DocTypeSECFiling},
		},
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestStore_Add_Empty(t *testing.T) {
	client, ts := mockWeaviate(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for empty batch")
	})
	defer ts.Close()

	store := adapter.NewStore(client)
	n, err := store.Add(context.Background(), nil)
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_Search(t *testing.T) {
	client, ts := mockWeaviate(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/graphql", r.URL.Path)

		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		query := body["query"].(string)
		assert.Contains(t, query, "nearVector")
		assert.Contains(t, query, "FinancialChunk")

		w.WriteHeader(http.StatusOK)
		resp := map[string]interface{}{
			"data": map[string]interface{}{
				"Get": map[string]interface{}{
					"FinancialChunk": []interface{}{
						map[string]interface{}{
							"content":        "found content",
							"ticker":         "AAPL",
							"docType":        "sec_filing",
							"sectionName":    "Item 7. MD&A",
							"itemNumber":     "7",
							"sourceFilename": "aapl-10k.pdf",
							"pageNumbers":    []interface{}{3.0, 4.0},
							"_additional": map[string]interface{}{
								"id":        "11111111-1111-1111-1111-111111111111",
								"certainty": 0.95,
							},
						},
					},
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	})
	defer ts.Close()

	store := adapter.NewStore(client)
	results, err := store.Search(context.Background(), []float32{0.1, 0.2}, 10, nil)
	assert.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "found content", results[0].Text)
	assert.Equal(t, float32(0.95), results[0].Score)
	assert.Equal(t, "AAPL", results[0].Metadata.Ticker)
	assert.Equal(t, chunking.DocTypeSECFiling, results[0].Metadata.DocType)
	assert.Equal(t, "7", results[0].Metadata.ItemNumber)
	assert.Equal(t, []int{3, 4}, results[0].Metadata.PageNumbers)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", results[0].ID)
}

func TestStore_Search_FilterBuildsWhereClause(t *testing.T) {
	client, ts := mockWeaviate(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		query := body["query"].(string)
		assert.Contains(t, query, "where")
		assert.Contains(t, query, "ticker")
		assert.Contains(t, query, "AAPL")
		assert.Contains(t, query, "docType")
		assert.Contains(t, query, "sec_filing")
		assert.Contains(t, query, "And")

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"Get": map[string]interface{}{"FinancialChunk": []interface{}{}},
			},
		})
	})
	defer ts.Close()

	store := adapter.NewStore(client)
	filter := &vectorstore.MetadataFilter{Ticker: "AAPL", DocType: "sec_filing"}
	results, err := store.Search(context.Background(), []float32{0.1}, 5, filter)
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestStore_Search_GraphQLError(t *testing.T) {
	client, ts := mockWeaviate(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"errors": []map[string]interface{}{{"message": "class not found"}},
		})
	})
	defer ts.Close()

	store := adapter.NewStore(client)
	_, err := store.Search(context.Background(), []float32{0.1}, 5, nil)
	assert.Error(t, err)
}

func TestStore_Count(t *testing.T) {
	client, ts := mockWeaviate(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/graphql", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		resp := map[string]interface{}{
			"data": map[string]interface{}{
				"Aggregate": map[string]interface{}{
					"FinancialChunk": []interface{}{
						map[string]interface{}{
							"meta": map[string]interface{}{
								"count": 42.0,
							},
						},
					},
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	})
	defer ts.Close()

	store := adapter.NewStore(client)
	count, err := store.Count(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 42, count)
}

func TestStore_DeleteBySource(t *testing.T) {
	client, ts := mockWeaviate(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/batch/objects", r.URL.Path)
		assert.Equal(t, "DELETE", r.Method)

		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		match := body["match"].(map[string]interface{})
		where := match["where"].(map[string]interface{})
		path := where["path"].([]interface{})
		assert.Equal(t, "sourceFilename", path[0])

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"results": map[string]interface{}{"successful": 3},
		})
	})
	defer ts.Close()

	store := adapter.NewStore(client)
	removed, err := store.DeleteBySource(context.Background(), "aapl-10k.pdf")
	assert.NoError(t, err)
	assert.Equal(t, 3, removed)
}
