package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medli/medli-api/internal/domain/entity"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   map[string]any
}

func newTestIndex(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*RecordingIndex, *[]recordedRequest) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(b, &body)
		mu.Lock()
		reqs = append(reqs, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: body})
		mu.Unlock()
		// The client refuses responses that do not identify as Elasticsearch.
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewRecordingIndex(es, "recordings"), &reqs
}

func TestIndexAddsUserID(t *testing.T) {
	idx, reqs := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"result":"created"}`)
	})
	rec := entity.Recording{ID: "rec-1", Timestamp: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Duration: 12, Type: "cough", Recommendations: []string{}}

	require.NoError(t, idx.Index(context.Background(), "user-1", rec))
	require.Len(t, *reqs, 1)
	got := (*reqs)[0]
	assert.Equal(t, http.MethodPut, got.Method)
	assert.Equal(t, "/recordings/_doc/rec-1", got.Path)
	assert.Equal(t, "user-1", got.Body["user_id"])
	assert.EqualValues(t, 12, got.Body["duration"])
}

func TestDeleteIgnoresMissingDocument(t *testing.T) {
	idx, _ := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"result":"not_found"}`)
	})
	assert.NoError(t, idx.Delete(context.Background(), "user-1", "rec-1"))
}

func TestDeleteUserQueriesByUserID(t *testing.T) {
	idx, reqs := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"deleted":2}`)
	})
	require.NoError(t, idx.DeleteUser(context.Background(), "user-1"))
	require.Len(t, *reqs, 1)
	assert.Equal(t, "/recordings/_delete_by_query", (*reqs)[0].Path)
	term := (*reqs)[0].Body["query"].(map[string]any)["term"].(map[string]any)
	assert.Equal(t, "user-1", term["user_id"])
}

func TestSearchReturnsIDsInOrder(t *testing.T) {
	idx, reqs := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"hits":{"hits":[{"_id":"b"},{"_id":"a"}]}}`)
	})
	ids, err := idx.Search(context.Background(), "user-1", "wet", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids)
	assert.Equal(t, "/recordings/_search", (*reqs)[0].Path)
	assert.EqualValues(t, 5, (*reqs)[0].Body["size"])
}

func TestIndexErrorStatus(t *testing.T) {
	idx, _ := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"mapper_parsing_exception"}`)
	})
	assert.Error(t, idx.Index(context.Background(), "user-1", entity.Recording{ID: "x"}))
}

func TestEnsureIndexCreatesWhenMissing(t *testing.T) {
	idx, reqs := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, `{"acknowledged":true}`)
	})
	require.NoError(t, idx.EnsureIndex(context.Background()))
	require.Len(t, *reqs, 2)
	assert.Equal(t, http.MethodPut, (*reqs)[1].Method)
	assert.Equal(t, "/recordings", (*reqs)[1].Path)
}
