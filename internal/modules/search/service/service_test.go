package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"anoa.com/itemprofile/internal/entity"
	"anoa.com/itemprofile/pkg/logger"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
}

type fakeMeili struct {
	mu       sync.Mutex
	requests []recordedRequest
	hits     []string
}

func (f *fakeMeili) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: string(body)})
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if strings.HasSuffix(r.URL.Path, "/search") {
		hits := make([]map[string]string, 0, len(f.hits))
		for _, id := range f.hits {
			hits = append(hits, map[string]string{"id": id})
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{"hits": hits, "query": "", "processingTimeMs": 1})
		return
	}

	w.WriteHeader(http.StatusAccepted)
	_, _ = io.WriteString(w, `{"taskUid":1,"indexUid":"items","status":"enqueued","type":"documentAdditionOrUpdate","enqueuedAt":"2024-01-01T00:00:00Z"}`)
}

func (f *fakeMeili) find(method, pathSuffix string) *recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.requests {
		if f.requests[i].Method == method && strings.HasSuffix(f.requests[i].Path, pathSuffix) {
			return &f.requests[i]
		}
	}
	return nil
}

func newIndex(t *testing.T, fake *fakeMeili) ItemIndex {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return NewMeiliItemIndex(meilisearch.New(srv.URL), logger.Discard())
}

func TestNewMeiliItemIndexConfiguresFilter(t *testing.T) {
	fake := &fakeMeili{}
	newIndex(t, fake)

	req := fake.find(http.MethodPut, "/indexes/items/settings/filterable-attributes")
	require.NotNil(t, req)
	assert.Contains(t, req.Body, "user_id")
}

func TestIndexItemStripsMarkup(t *testing.T) {
	fake := &fakeMeili{}
	idx := newIndex(t, fake)

	item := &entity.Item{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Name:        "<b>book</b>",
		Description: "<p>a&amp;b</p><script>x</script>",
		CreatedAt:   time.Now(),
	}
	require.NoError(t, idx.IndexItem(context.Background(), item))

	req := fake.find(http.MethodPost, "/indexes/items/documents")
	require.NotNil(t, req)

	var docs []meiliItemDoc
	require.NoError(t, json.Unmarshal([]byte(req.Body), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "book", docs[0].Name)
	assert.Equal(t, "a&b", docs[0].Description)
	assert.Equal(t, item.UserID.String(), docs[0].UserID)
}

func TestSearchItemIDsFiltersByOwner(t *testing.T) {
	keep := uuid.New()
	fake := &fakeMeili{hits: []string{keep.String(), "not-a-uuid"}}
	idx := newIndex(t, fake)

	owner := uuid.New()
	ids, err := idx.SearchItemIDs(context.Background(), owner, "book", 10)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{keep}, ids)

	req := fake.find(http.MethodPost, "/indexes/items/search")
	require.NotNil(t, req)
	assert.Contains(t, req.Body, owner.String())
}

func TestDeleteItem(t *testing.T) {
	fake := &fakeMeili{}
	idx := newIndex(t, fake)

	id := uuid.New()
	require.NoError(t, idx.DeleteItem(context.Background(), id))
	assert.NotNil(t, fake.find(http.MethodDelete, "/indexes/items/documents/"+id.String()))
}
