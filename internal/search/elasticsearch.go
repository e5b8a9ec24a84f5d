package search

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/krupapatkar/appsolution-admin/config"
	"github.com/krupapatkar/appsolution-admin/internal/models"
)

const (
	productIndex = "products"
	blogIndex    = "blog-posts"
)

// ElasticClient mirrors catalog writes into Elasticsearch. The
// database stays authoritative for reads; the index feeds external
// analytics and the storefront's suggestion box.
type ElasticClient struct {
	client *elasticsearch.Client
	config config.ElasticConfig
}

// NewElasticClient creates a new Elasticsearch client
func NewElasticClient(cfg config.ElasticConfig) (*ElasticClient, error) {
	esConfig := elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	}

	client, err := elasticsearch.NewClient(esConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Elasticsearch client")
	}

	return &ElasticClient{
		client: client,
		config: cfg,
	}, nil
}

// IndexProduct indexes a product document
func (c *ElasticClient) IndexProduct(ctx context.Context, product *models.Product) error {
	doc := map[string]interface{}{
		"id":          product.ID.String(),
		"name":        product.Name,
		"description": product.Description,
		"category":    product.Category,
		"price":       product.Price,
		"status":      string(product.Status),
		"sales":       product.Sales,
		"created_at":  product.CreatedAt,
	}
	return c.index(ctx, productIndex, product.ID.String(), doc)
}

// DeleteProduct removes a product document
func (c *ElasticClient) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	req := esapi.DeleteRequest{
		Index:      config.FormatIndex(c.config, productIndex),
		DocumentID: id.String(),
	}
	res, err := req.Do(ctx, c.client)
	if err != nil {
		return errors.Wrap(err, "failed to execute Elasticsearch delete request")
	}
	defer res.Body.Close()

	// 404 means the document was never indexed; nothing to do
	if res.IsError() && res.StatusCode != 404 {
		return errors.Errorf("Elasticsearch delete error: %s", res.String())
	}
	return nil
}

// IndexBlogPost indexes a blog post document
func (c *ElasticClient) IndexBlogPost(ctx context.Context, post *models.BlogPost) error {
	doc := map[string]interface{}{
		"id":         post.ID.String(),
		"title":      post.Title,
		"excerpt":    post.Excerpt,
		"category":   post.Category,
		"tags":       []string(post.Tags),
		"status":     string(post.Status),
		"views":      post.Views,
		"created_at": post.CreatedAt,
	}
	return c.index(ctx, blogIndex, post.ID.String(), doc)
}

func (c *ElasticClient) index(ctx context.Context, index, docID string, doc map[string]interface{}) error {
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "failed to marshal document")
	}

	req := esapi.IndexRequest{
		Index:      config.FormatIndex(c.config, index),
		DocumentID: docID,
		Body:       bytes.NewReader(docJSON),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return errors.Wrap(err, "failed to execute Elasticsearch index request")
	}
	defer res.Body.Close()

	if res.IsError() {
		var e map[string]interface{}
		if err := json.NewDecoder(res.Body).Decode(&e); err != nil {
			return errors.Wrap(err, "failed to parse Elasticsearch error response")
		}
		return errors.Errorf("Elasticsearch index error: %v", e)
	}

	log.Debug().Str("index", index).Str("doc_id", docID).Msg("document indexed")
	return nil
}
