package vector

import (
	"context"

	"github.com/weaviate/weaviate/entities/models"
)

// ClassName is the Weaviate class holding embedded financial chunks.
const ClassName = "FinancialChunk"

// SchemaClient defines the interface for Weaviate schema operations
type SchemaClient interface {
	ClassExists(ctx context.Context, className string) (bool, error)
	CreateClass(ctx context.Context, class *models.Class) error
	GetClass(ctx context.Context, className string) (*models.Class, error)
	AddProperty(ctx context.Context, className string, property *models.Property) error
}

func classProperties() []*models.Property {
	return []*models.Property{
		{
			Name:     "content",
			DataType: []string{"text"},
		},
		{
			Name:     "ticker",
			DataType: []string{"string"}, // exact match
		},
		{
			Name:     "docType",
			DataType: []string{"string"},
		},
		{
			Name:     "sectionName",
			DataType: []string{"string"},
		},
		{
			Name:     "itemNumber",
			DataType: []string{"string"},
		},
		{
			Name:     "speaker",
			DataType: []string{"string"},
		},
		{
			Name:     "sourceFilename",
			DataType: []string{"string"},
		},
		{
			Name:     "filingDate",
			DataType: []string{"string"},
		},
		{
			Name:     "chunkIndex",
			DataType: []string{"int"},
		},
		{
			Name:     "totalChunks",
			DataType: []string{"int"},
		},
		{
			Name:     "pageNumbers",
			DataType: []string{"int[]"},
		},
	}
}

// EnsureSchema checks that the FinancialChunk class exists and creates or
// extends it if not. Vectors are supplied by the application, so the class
// carries no vectorizer.
func EnsureSchema(ctx context.Context, client SchemaClient) error {
	exists, err := client.ClassExists(ctx, ClassName)
	if err != nil {
		return err
	}

	properties := classProperties()

	if !exists {
		class := &models.Class{
			Class:       ClassName,
			Description: "An embedded chunk of a financial document",
			Vectorizer:  "none",
			Properties:  properties,
		}
		return client.CreateClass(ctx, class)
	}

	// Class exists, check for missing properties
	class, err := client.GetClass(ctx, ClassName)
	if err != nil {
		return err
	}

	existingProps := make(map[string]bool)
	for _, p := range class.Properties {
		existingProps[p.Name] = true
	}

	for _, p := range properties {
		if !existingProps[p.Name] {
			if err := client.AddProperty(ctx, ClassName, p); err != nil {
				return err
			}
		}
	}

	return nil
}
