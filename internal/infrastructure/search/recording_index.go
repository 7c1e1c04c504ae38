package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/medli/medli-api/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// RecordingIndex mirrors cough recordings into an Elasticsearch index,
// one document per recording keyed by the recording id.
type RecordingIndex struct {
	ES        *elasticsearch.Client
	IndexName string
}

func NewRecordingIndex(es *elasticsearch.Client, index string) *RecordingIndex {
	return &RecordingIndex{ES: es, IndexName: index}
}

var indexMapping = `{
  "mappings": {
    "properties": {
      "user_id":         {"type": "keyword"},
      "id":              {"type": "keyword"},
      "timestamp":       {"type": "date"},
      "duration":        {"type": "float"},
      "type":            {"type": "keyword"},
      "intensity":       {"type": "text"},
      "pattern":         {"type": "text"},
      "quality":         {"type": "text"},
      "observation":     {"type": "text"},
      "recommendations": {"type": "text"}
    }
  }
}`

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (x *RecordingIndex) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := esapi.IndicesExistsRequest{Index: []string{x.IndexName}}.Do(c, x.ES)
	if err != nil {
		return err
	}
	drain(res)
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = esapi.IndicesCreateRequest{Index: x.IndexName, Body: strings.NewReader(indexMapping)}.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer drain(res)
	// Another instance may have created it in the meantime.
	if res.IsError() && !strings.Contains(readBody(res), "resource_already_exists_exception") {
		return fmt.Errorf("create index %s: %s", x.IndexName, res.Status())
	}
	return nil
}

func (x *RecordingIndex) Index(ctx context.Context, userID string, rec entity.Recording) error {
	doc, err := recordingDocument(userID, rec)
	if err != nil {
		return err
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := esapi.IndexRequest{Index: x.IndexName, DocumentID: rec.ID, Body: bytes.NewReader(doc), Refresh: "false"}.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer drain(res)
	if res.IsError() {
		return fmt.Errorf("index recording %s: %s", rec.ID, res.Status())
	}
	return nil
}

// Delete removes one recording. A missing document is not an error.
func (x *RecordingIndex) Delete(ctx context.Context, _ string, recordingID string) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := esapi.DeleteRequest{Index: x.IndexName, DocumentID: recordingID}.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer drain(res)
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete recording %s: %s", recordingID, res.Status())
	}
	return nil
}

// DeleteUser removes every recording of the user.
func (x *RecordingIndex) DeleteUser(ctx context.Context, userID string) error {
	body, _ := json.Marshal(map[string]any{
		"query": map[string]any{"term": map[string]any{"user_id": userID}},
	})
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := esapi.DeleteByQueryRequest{Index: []string{x.IndexName}, Body: bytes.NewReader(body), Conflicts: "proceed"}.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer drain(res)
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete recordings of %s: %s", userID, res.Status())
	}
	return nil
}

// Search runs a multi_match over the descriptive fields, restricted to userID.
func (x *RecordingIndex) Search(ctx context.Context, userID, q string, size int) ([]string, error) {
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{map[string]any{"term": map[string]any{"user_id": userID}}},
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"observation^2", "pattern", "intensity", "quality", "qualityDescription", "recommendations"},
					},
				},
			},
		},
		"size":    size,
		"_source": false,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.ES.Search(x.ES.Search.WithContext(c), x.ES.Search.WithIndex(x.IndexName), x.ES.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, err
	}
	defer drain(res)
	if res.IsError() {
		return nil, fmt.Errorf("search recordings: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

func recordingDocument(userID string, rec entity.Recording) ([]byte, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	doc["user_id"] = userID
	return json.Marshal(doc)
}

func readBody(res *esapi.Response) string {
	b, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return string(b)
}

func drain(res *esapi.Response) {
	if res != nil && res.Body != nil {
		_, _ = io.Copy(io.Discard, res.Body)
		_ = res.Body.Close()
	}
}
