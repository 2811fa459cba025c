package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/Mod5ied/eagle-server/infrastructure/logger"
)

// maxSearchSize is the Elasticsearch default max_result_window.
const maxSearchSize = 10000

// indexMapping stores string fields as exact keywords so equality filters
// match whole values, and fields ending in "At" as nanosecond dates.
const indexMapping = `{
  "mappings": {
    "dynamic_templates": [
      {"timestamps": {"match": "*At", "mapping": {"type": "date_nanos"}}},
      {"strings": {"match_mapping_type": "string", "mapping": {"type": "keyword"}}}
    ]
  }
}`

// ElasticsearchStore maps each collection to an index named prefix+name.
// Writes use refresh=true so they are visible to the next search.
type ElasticsearchStore struct {
	client *es.Client
	prefix string
	log    logger.Logger

	mu      sync.Mutex
	ensured map[string]bool
}

// NewElasticsearchStore wraps a connected client.
func NewElasticsearchStore(client *es.Client, prefix string, log logger.Logger) *ElasticsearchStore {
	return &ElasticsearchStore{
		client:  client,
		prefix:  prefix,
		log:     log,
		ensured: make(map[string]bool),
	}
}

func (s *ElasticsearchStore) Collection(name string) Collection {
	return &esCollection{store: s, name: name, index: s.prefix + name}
}

func (s *ElasticsearchStore) Driver() string { return "elasticsearch" }

func (s *ElasticsearchStore) Close() error { return nil }

// ensureIndex creates the index with indexMapping the first time it is
// written to.
func (s *ElasticsearchStore) ensureIndex(ctx context.Context, index string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ensured[index] {
		return nil
	}

	res, err := s.client.Indices.Exists([]string{index}, s.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", index, err)
	}
	res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		res, err = s.client.Indices.Create(index,
			s.client.Indices.Create.WithContext(ctx),
			s.client.Indices.Create.WithBody(strings.NewReader(indexMapping)),
		)
		if err != nil {
			return fmt.Errorf("create index %s: %w", index, err)
		}
		defer res.Body.Close()

		if res.IsError() && !strings.Contains(res.String(), "resource_already_exists_exception") {
			return fmt.Errorf("create index %s: %s", index, res.String())
		}
		s.log.Info("Created Elasticsearch index", logger.String("index", index))
	}

	s.ensured[index] = true
	return nil
}

type esCollection struct {
	store *ElasticsearchStore
	name  string
	index string
}

func (c *esCollection) Name() string { return c.name }

func (c *esCollection) client() *es.Client { return c.store.client }

type esGetResponse struct {
	ID     string         `json:"_id"`
	Found  bool           `json:"found"`
	Source map[string]any `json:"_source"`
}

type esSearchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string         `json:"_id"`
			Source map[string]any `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

type esIndexResponse struct {
	ID string `json:"_id"`
}

func (c *esCollection) Get(ctx context.Context, id string) (Document, error) {
	res, err := c.client().Get(c.index, id, c.client().Get.WithContext(ctx))
	if err != nil {
		return Document{}, fmt.Errorf("get %s/%s: %w", c.index, id, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return Document{}, ErrNotFound
	}
	if res.IsError() {
		return Document{}, fmt.Errorf("get %s/%s: %s", c.index, id, res.String())
	}

	var body esGetResponse
	if err = json.NewDecoder(res.Body).Decode(&body); err != nil {
		return Document{}, fmt.Errorf("decode %s/%s: %w", c.index, id, err)
	}
	if !body.Found {
		return Document{}, ErrNotFound
	}
	return Document{ID: body.ID, Data: body.Source}, nil
}

func (c *esCollection) Find(ctx context.Context, q Query) ([]Document, error) {
	body, err := json.Marshal(searchBody(q))
	if err != nil {
		return nil, fmt.Errorf("encode search: %w", err)
	}

	res, err := c.client().Search(
		c.client().Search.WithContext(ctx),
		c.client().Search.WithIndex(c.index),
		c.client().Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", c.index, err)
	}
	defer res.Body.Close()

	// A collection nobody has written to has no index yet.
	if res.StatusCode == http.StatusNotFound {
		return []Document{}, nil
	}
	if res.IsError() {
		return nil, fmt.Errorf("search %s: %s", c.index, res.String())
	}

	var parsed esSearchResponse
	if err = json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search %s: %w", c.index, err)
	}

	docs := make([]Document, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		docs = append(docs, Document{ID: h.ID, Data: h.Source})
	}
	return docs, nil
}

func searchBody(q Query) map[string]any {
	size := q.Limit
	if size <= 0 {
		size = maxSearchSize
	}

	query := map[string]any{"match_all": map[string]any{}}
	if len(q.Filters) > 0 {
		terms := make([]any, 0, len(q.Filters))
		for _, f := range q.Filters {
			terms = append(terms, map[string]any{"term": map[string]any{f.Field: f.Value}})
		}
		query = map[string]any{"bool": map[string]any{"filter": terms}}
	}

	body := map[string]any{"query": query, "size": size}
	if q.OrderBy != "" {
		order := "asc"
		if q.Descending {
			order = "desc"
		}
		body["sort"] = []any{
			map[string]any{q.OrderBy: map[string]any{"order": order, "unmapped_type": "date_nanos"}},
		}
	}
	return body
}

func (c *esCollection) Add(ctx context.Context, data map[string]any) (Document, error) {
	if err := c.store.ensureIndex(ctx, c.index); err != nil {
		return Document{}, err
	}

	body, err := json.Marshal(data)
	if err != nil {
		return Document{}, fmt.Errorf("encode document: %w", err)
	}

	res, err := c.client().Index(c.index, bytes.NewReader(body),
		c.client().Index.WithContext(ctx),
		c.client().Index.WithRefresh("true"),
	)
	if err != nil {
		return Document{}, fmt.Errorf("index into %s: %w", c.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return Document{}, fmt.Errorf("index into %s: %s", c.index, res.String())
	}

	var parsed esIndexResponse
	if err = json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return Document{}, fmt.Errorf("decode index response: %w", err)
	}

	stored, err := Encode(data)
	if err != nil {
		return Document{}, err
	}
	return Document{ID: parsed.ID, Data: stored}, nil
}

func (c *esCollection) Update(ctx context.Context, id string, data map[string]any) error {
	body, err := json.Marshal(map[string]any{"doc": data})
	if err != nil {
		return fmt.Errorf("encode update: %w", err)
	}

	res, err := c.client().Update(c.index, id, bytes.NewReader(body),
		c.client().Update.WithContext(ctx),
		c.client().Update.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", c.index, id, err)
	}
	defer res.Body.Close()

	return checkWrite(res, "update", c.index, id)
}

func (c *esCollection) Delete(ctx context.Context, id string) error {
	res, err := c.client().Delete(c.index, id,
		c.client().Delete.WithContext(ctx),
		c.client().Delete.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", c.index, id, err)
	}
	defer res.Body.Close()

	return checkWrite(res, "delete", c.index, id)
}

func checkWrite(res *esapi.Response, op, index, id string) error {
	if res.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, res.Body)
		return ErrNotFound
	}
	if res.IsError() {
		return fmt.Errorf("%s %s/%s: %s", op, index, id, res.String())
	}
	return nil
}
