package weaviate

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-openapi/strfmt"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"finrag/internal/chunking"
	"finrag/internal/vector"
	"finrag/internal/vectorstore"
)

// Store backs the vector store contract with a Weaviate instance. Vectors
// are supplied by the application; the FinancialChunk class has no
// vectorizer.
type Store struct {
	client *weaviate.Client
}

func NewStore(client *weaviate.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Add(ctx context.Context, records []vectorstore.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	batcher := s.client.Batch().ObjectsBatcher()
	for _, r := range records {
		batcher = batcher.WithObjects(&models.Object{
			ID:         strfmt.UUID(r.ID),
			Class:      vector.ClassName,
			Vector:     r.Embedding,
			Properties: recordProperties(r),
		})
	}

	resp, err := batcher.Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("batch insert: %w", err)
	}
	for _, obj := range resp {
		if obj.Result != nil && obj.Result.Errors != nil && len(obj.Result.Errors.Error) > 0 {
			return 0, fmt.Errorf("batch insert object %s: %s", obj.ID, obj.Result.Errors.Error[0].Message)
		}
	}
	return len(records), nil
}

func (s *Store) Search(ctx context.Context, embedding []float32, topK int, filter *vectorstore.MetadataFilter) ([]vectorstore.SearchResult, error) {
	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(embedding)

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "ticker"},
		{Name: "docType"},
		{Name: "sectionName"},
		{Name: "itemNumber"},
		{Name: "speaker"},
		{Name: "sourceFilename"},
		{Name: "filingDate"},
		{Name: "pageNumbers"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "id"}, {Name: "certainty"}}},
	}

	query := s.client.GraphQL().Get().
		WithClassName(vector.ClassName).
		WithNearVector(nearVector).
		WithLimit(topK).
		WithFields(fields...)

	if where := whereFromFilter(filter); where != nil {
		query = query.WithWhere(where)
	}

	res, err := query.Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %v", res.Errors)
	}

	results := []vectorstore.SearchResult{}
	data, ok := res.Data["Get"].(map[string]interface{})
	if !ok {
		return results, nil
	}
	chunks, ok := data[vector.ClassName].([]interface{})
	if !ok {
		return results, nil
	}

	for _, c := range chunks {
		props, ok := c.(map[string]interface{})
		if !ok {
			continue
		}
		results = append(results, resultFromProperties(props))
	}
	return results, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	res, err := s.client.GraphQL().Aggregate().
		WithClassName(vector.ClassName).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return 0, err
	}
	if len(res.Errors) > 0 {
		return 0, fmt.Errorf("graphql error: %v", res.Errors)
	}

	data, ok := res.Data["Aggregate"].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	rows, ok := data[vector.ClassName].([]interface{})
	if !ok || len(rows) == 0 {
		return 0, nil
	}
	row, ok := rows[0].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	meta, ok := row["meta"].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	count, ok := meta["count"].(float64)
	if !ok {
		return 0, nil
	}
	return int(count), nil
}

func (s *Store) DeleteBySource(ctx context.Context, sourceFilename string) (int, error) {
	resp, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(vector.ClassName).
		WithOutput("minimal").
		WithWhere(filters.Where().
			WithPath([]string{"sourceFilename"}).
			WithOperator(filters.Equal).
			WithValueString(sourceFilename)).
		Do(ctx)
	if err != nil {
		return 0, err
	}
	if resp != nil && resp.Results != nil {
		return int(resp.Results.Successful), nil
	}
	return 0, nil
}

// Clear drops the whole class and recreates an empty schema.
func (s *Store) Clear(ctx context.Context) error {
	adapter := vector.NewClientAdapter(s.client)
	if err := adapter.DeleteClass(ctx, vector.ClassName); err != nil {
		return err
	}
	return vector.EnsureSchema(ctx, adapter)
}

func recordProperties(r vectorstore.Record) map[string]interface{} {
	props := map[string]interface{}{
		"content":        r.Text,
		"ticker":         r.Metadata.Ticker,
		"docType":        string(r.Metadata.DocType),
		"sectionName":    r.Metadata.SectionName,
		"itemNumber":     r.Metadata.ItemNumber,
		"speaker":        r.Metadata.Speaker,
		"sourceFilename": r.Metadata.SourceFilename,
		"filingDate":     r.Metadata.FilingDate,
	}
	if len(r.Metadata.PageNumbers) > 0 {
		props["pageNumbers"] = r.Metadata.PageNumbers
	}
	return props
}

func resultFromProperties(props map[string]interface{}) vectorstore.SearchResult {
	result := vectorstore.SearchResult{}

	if content, ok := props["content"].(string); ok {
		result.Text = content
	}
	if ticker, ok := props["ticker"].(string); ok {
		result.Metadata.Ticker = ticker
	}
	if docType, ok := props["docType"].(string); ok {
		result.Metadata.DocType = chunking.DocType(docType)
	}
	if section, ok := props["sectionName"].(string); ok {
		result.Metadata.SectionName = section
	}
	if item, ok := props["itemNumber"].(string); ok {
		result.Metadata.ItemNumber = item
	}
	if speaker, ok := props["speaker"].(string); ok {
		result.Metadata.Speaker = speaker
	}
	if src, ok := props["sourceFilename"].(string); ok {
		result.Metadata.SourceFilename = src
	}
	if date, ok := props["filingDate"].(string); ok {
		result.Metadata.FilingDate = date
	}
	if pages, ok := props["pageNumbers"].([]interface{}); ok {
		for _, p := range pages {
			if n, ok := p.(float64); ok {
				result.Metadata.PageNumbers = append(result.Metadata.PageNumbers, int(n))
			}
		}
	}

	if additional, ok := props["_additional"].(map[string]interface{}); ok {
		if id, ok := additional["id"].(string); ok {
			result.ID = id
		}
		// Certainty comes back as float64 in most versions, string in a few.
		if certainty, ok := additional["certainty"].(float64); ok {
			result.Score = float32(certainty)
		} else if raw, ok := additional["certainty"].(string); ok {
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				result.Score = float32(f)
			}
		}
	}
	return result
}

func whereFromFilter(filter *vectorstore.MetadataFilter) *filters.WhereBuilder {
	if filter == nil || filter.IsZero() {
		return nil
	}

	fields := []struct {
		path  string
		value string
	}{
		{"ticker", filter.Ticker},
		{"docType", filter.DocType},
		{"sectionName", filter.SectionName},
		{"itemNumber", filter.ItemNumber},
		{"speaker", filter.Speaker},
		{"sourceFilename", filter.SourceFilename},
	}

	var operands []*filters.WhereBuilder
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		operands = append(operands, filters.Where().
			WithPath([]string{f.path}).
			WithOperator(filters.Equal).
			WithValueString(f.value))
	}

	if len(operands) == 1 {
		return operands[0]
	}
	return filters.Where().
		WithOperator(filters.And).
		WithOperands(operands)
}
