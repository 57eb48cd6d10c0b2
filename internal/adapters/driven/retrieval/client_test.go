package retrieval

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/posture-cli/internal/core/ports/driven"
)

func TestRetrieve(t *testing.T) {
	var gotReq map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_, _ = w.Write([]byte(`{
			"scored_chunks": [
				{
					"content": "Backups run nightly",
					"score": 0.92,
					"chunk_id": "c-1",
					"metadata": {"document_id": "doc-1", "document_name": "Backup Policy", "page": 3}
				},
				{
					"text": "Recovery is tested quarterly",
					"score": 0.61,
					"doc_id": "doc-2"
				}
			]
		}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	chunks, err := client.Retrieve(context.Background(), "backup recovery process", driven.RetrieveOptions{
		Partition: "acme",
		TopK:      5,
		Rerank:    true,
	})

	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, "Backups run nightly", chunks[0].Content)
	assert.Equal(t, 0.92, chunks[0].Score)
	assert.Equal(t, "doc-1", chunks[0].DocumentID)
	assert.Equal(t, "Backup Policy", chunks[0].DocumentName)
	assert.Equal(t, 3, chunks[0].Page)

	// Alternate field names: text for content, doc_id for document id.
	assert.Equal(t, "Recovery is tested quarterly", chunks[1].Content)
	assert.Equal(t, "doc-2", chunks[1].DocumentID)

	assert.Equal(t, "backup recovery process", gotReq["query"])
	assert.Equal(t, "acme", gotReq["partition"])
	assert.Equal(t, float64(5), gotReq["top_k"])
	assert.Equal(t, true, gotReq["rerank"])
}

func TestRetrieveEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"scored_chunks": []}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	chunks, err := client.Retrieve(context.Background(), "anything", driven.RetrieveOptions{Partition: "acme"})

	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestRetrieveRequiresPartition(t *testing.T) {
	client, err := NewClient(Config{BaseURL: "http://localhost:1"})
	require.NoError(t, err)

	_, err = client.Retrieve(context.Background(), "q", driven.RetrieveOptions{})
	assert.Error(t, err)
}

func TestRetrieveProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL, MaxRetries: 1})
	require.NoError(t, err)

	_, err = client.Retrieve(context.Background(), "q", driven.RetrieveOptions{Partition: "acme"})
	assert.Error(t, err, "exhausted retries surface as an error; the orchestrator degrades to no evidence")
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}
