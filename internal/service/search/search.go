package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/sweetslice/cakeshop/internal/models"
)

// Search runs a fuzzy multi_match over cake names and descriptions.
func Search(ctx context.Context, es *elasticsearch.Client, index, query string, from, size int) (int64, []models.Cake, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode search query: %w", err)
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search request: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search error: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Cake `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	cakes := make([]models.Cake, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		cakes[i] = hit.Source
	}
	return r.Hits.Total.Value, cakes, nil
}

// IndexCake writes the cake document so it turns up in /api/search. Callers
// treat failures as best-effort.
func IndexCake(ctx context.Context, es *elasticsearch.Client, index string, cake *models.Cake) error {
	data, err := json.Marshal(cake)
	if err != nil {
		return fmt.Errorf("encode cake: %w", err)
	}

	res, err := es.Index(
		index,
		bytes.NewReader(data),
		es.Index.WithDocumentID(strconv.Itoa(cake.ID)),
		es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index cake: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index cake: %s", res.Status())
	}
	return nil
}

// DeleteCake removes the document for a cake that left the catalog.
func DeleteCake(ctx context.Context, es *elasticsearch.Client, index string, id int) error {
	res, err := es.Delete(index, strconv.Itoa(id), es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete cake document: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete cake document: %s", res.Status())
	}
	return nil
}
