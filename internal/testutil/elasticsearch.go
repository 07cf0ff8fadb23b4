package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// FakeElasticsearch speaks just enough of the REST API for the search client:
// info, index exists/create, document put/delete and _search.
type FakeElasticsearch struct {
	URL string

	mu          sync.Mutex
	index       string
	indexExists bool
	docs        map[string]map[string]interface{}
	lastSearch  map[string]interface{}

	// SearchHits are the ids returned by every _search
	SearchHits []string
	// FailSearch makes _search answer 500
	FailSearch bool
}

// NewFakeElasticsearch starts a fake cluster serving index, stopped with the test
func NewFakeElasticsearch(t testing.TB, index string) *FakeElasticsearch {
	t.Helper()
	fake := &FakeElasticsearch{index: index, docs: map[string]map[string]interface{}{}}
	srv := httptest.NewServer(http.HandlerFunc(fake.serve))
	t.Cleanup(srv.Close)
	fake.URL = srv.URL
	return fake
}

// IndexExists reports whether the index was created
func (f *FakeElasticsearch) IndexExists() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.indexExists
}

// Doc returns the stored source of id, or nil
func (f *FakeElasticsearch) Doc(id string) map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.docs[id]
}

// DocCount is the number of indexed documents
func (f *FakeElasticsearch) DocCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs)
}

// LastSearch returns the body of the most recent _search
func (f *FakeElasticsearch) LastSearch() map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastSearch
}

func (f *FakeElasticsearch) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(r.URL.Path, "/")
	parts := strings.Split(path, "/")

	switch {
	case path == "":
		_, _ = io.WriteString(w, `{"name":"fake","cluster_name":"test","version":{"number":"9.1.0","build_flavor":"default"},"tagline":"You Know, for Search"}`)

	case r.Method == http.MethodHead && path == f.index:
		if !f.indexExists {
			w.WriteHeader(http.StatusNotFound)
		}

	case r.Method == http.MethodPut && path == f.index:
		f.indexExists = true
		_, _ = io.WriteString(w, `{"acknowledged":true}`)

	case len(parts) == 3 && parts[1] == "_doc" && (r.Method == http.MethodPut || r.Method == http.MethodPost):
		var doc map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&doc)
		f.docs[parts[2]] = doc
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"result":"created"}`)

	case len(parts) == 3 && parts[1] == "_doc" && r.Method == http.MethodDelete:
		if _, ok := f.docs[parts[2]]; !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"result":"not_found"}`)
			return
		}
		delete(f.docs, parts[2])
		_, _ = io.WriteString(w, `{"result":"deleted"}`)

	case len(parts) == 2 && parts[1] == "_search":
		if f.FailSearch {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `{"error":{"type":"search_phase_execution_exception"}}`)
			return
		}
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.lastSearch = body
		if _, ok := body["suggest"]; ok {
			_, _ = io.WriteString(w, `{"suggest":{"name_suggest":[{"text":"cha","options":[{"_id":"t1","text":"ChatGPT"}]}]}}`)
			return
		}
		hits := make([]map[string]interface{}, 0, len(f.SearchHits))
		for _, id := range f.SearchHits {
			hits = append(hits, map[string]interface{}{"_id": id, "_score": 1.0})
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"hits": map[string]interface{}{
				"total": map[string]interface{}{"value": len(f.SearchHits) + 10, "relation": "eq"},
				"hits":  hits,
			},
		})

	default:
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"unexpected request `+r.Method+` /`+path+`"}`)
	}
}
