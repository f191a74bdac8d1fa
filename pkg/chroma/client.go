package chroma

import (
	"context"
	"fmt"
	"log"

	"motelaudit-backend/pkg/config"

	chroma "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
)

// Client wraps the report collection. Vectors are computed by the caller
// (so their token usage can be metered) and stored as-is; upserts are
// idempotent by document id.
type Client struct {
	client     chroma.Client
	collection chroma.Collection
}

// Match is one ranked result from a similarity query.
type Match struct {
	ID       string
	Distance float64
	Metadata map[string]string
}

func NewClient(cfg *config.Config) (*Client, error) {
	if cfg.ChromaAPIKey == "" {
		return nil, fmt.Errorf("CHROMA_API_KEY is required")
	}

	var client chroma.Client
	var err error
	if cfg.ChromaDatabase != "" && cfg.ChromaTenant != "" {
		client, err = chroma.NewHTTPClient(
			chroma.WithBaseURL(chroma.ChromaCloudEndpoint),
			chroma.WithCloudAPIKey(cfg.ChromaAPIKey),
			chroma.WithDatabaseAndTenant(cfg.ChromaDatabase, cfg.ChromaTenant),
		)
	} else if cfg.ChromaTenant != "" {
		client, err = chroma.NewHTTPClient(
			chroma.WithBaseURL(chroma.ChromaCloudEndpoint),
			chroma.WithCloudAPIKey(cfg.ChromaAPIKey),
			chroma.WithTenant(cfg.ChromaTenant),
		)
	} else {
		client, err = chroma.NewHTTPClient(
			chroma.WithBaseURL(chroma.ChromaCloudEndpoint),
			chroma.WithCloudAPIKey(cfg.ChromaAPIKey),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create Chroma client: %w", err)
	}

	ctx := context.Background()
	collection, err := client.GetOrCreateCollection(ctx, cfg.ChromaCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("[Chroma] Initialized client with collection: %s", cfg.ChromaCollection)

	return &Client{client: client, collection: collection}, nil
}

// UpsertReport stores or replaces the vector for one report id.
func (c *Client) UpsertReport(ctx context.Context, id string, vector []float32, metadata map[string]any, content string) error {
	meta, err := chroma.NewDocumentMetadataFromMap(metadata)
	if err != nil {
		return fmt.Errorf("failed to create metadata: %w", err)
	}

	err = c.collection.Upsert(
		ctx,
		chroma.WithIDs(chroma.DocumentID(id)),
		chroma.WithMetadatas(meta),
		chroma.WithTexts(content),
		chroma.WithEmbeddings(embeddings.NewEmbeddingFromFloat32(vector)),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert report embedding: %w", err)
	}
	return nil
}

// Has reports whether an entry exists for the given id.
func (c *Client) Has(ctx context.Context, id string) (bool, error) {
	res, err := c.collection.Get(ctx, chroma.WithIDsGet(chroma.DocumentID(id)))
	if err != nil {
		return false, fmt.Errorf("failed to get %s: %w", id, err)
	}
	return len(res.GetIDs()) > 0, nil
}

// ExistingIDs returns the collection's current membership.
func (c *Client) ExistingIDs(ctx context.Context) (map[string]struct{}, error) {
	res, err := c.collection.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collection ids: %w", err)
	}

	ids := make(map[string]struct{})
	for _, id := range res.GetIDs() {
		ids[string(id)] = struct{}{}
	}
	return ids, nil
}

// Query returns the topK nearest entries for the given vector.
func (c *Client) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	results, err := c.collection.Query(
		ctx,
		chroma.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(vector)),
		chroma.WithNResults(topK),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}
	if results == nil || results.CountGroups() == 0 {
		return []Match{}, nil
	}

	idGroups := results.GetIDGroups()
	if len(idGroups) == 0 {
		return []Match{}, nil
	}
	distanceGroups := results.GetDistancesGroups()
	metadataGroups := results.GetMetadatasGroups()

	matches := make([]Match, 0, len(idGroups[0]))
	for i, id := range idGroups[0] {
		m := Match{ID: string(id), Metadata: map[string]string{}}
		if len(distanceGroups) > 0 && i < len(distanceGroups[0]) {
			m.Distance = float64(distanceGroups[0][i])
		}
		if len(metadataGroups) > 0 && i < len(metadataGroups[0]) {
			meta := metadataGroups[0][i]
			for _, key := range []string{"motel_name", "location", "department", "auditor", "report_date", "content"} {
				if v, ok := meta.GetString(key); ok {
					m.Metadata[key] = v
				}
			}
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// Count returns the total number of stored vectors.
func (c *Client) Count(ctx context.Context) (int, error) {
	count, err := c.collection.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count collection: %w", err)
	}
	return count, nil
}
