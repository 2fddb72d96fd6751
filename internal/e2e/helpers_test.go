package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"classd/internal/config"
	"classd/internal/dispatch"
	"classd/internal/httpapi"
	"classd/internal/registry"
)

// newFakeServing stands in for the remote inference servers. It answers
// model metadata queries and predictions for both served models.
func newFakeServing(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v1/models/bert_model":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"model_version_status": []map[string]any{{"state": "AVAILABLE", "version": "20190807"}},
			})
		case r.Method == http.MethodGet && r.URL.Path == "/v1/models/image_model":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"model_version_status": []map[string]any{{"state": "AVAILABLE", "version": "20190708"}},
			})
		case r.URL.Path == "/v1/models/bert_model:predict":
			_ = json.NewEncoder(w).Encode(map[string]any{"outputs": [][]float64{{0.2, 0.8}}})
		case r.URL.Path == "/v1/models/image_model:predict":
			_ = json.NewEncoder(w).Encode(map[string]any{"predictions": [][]float64{{0.1, 0.9}}})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeModelFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp model %s: %v", p, err)
	}
	return p
}

// newGateway wires the full stack (config, registry, dispatcher, mux)
// against the fake serving backend and returns a running test server.
func newGateway(t *testing.T, servingURL string) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Config{
		Addr:            ":0",
		BertServerURL:   servingURL,
		ImageServerURL:  servingURL,
		BertVocabPath:   writeModelFile(t, dir, "vocab.txt", "[PAD]\nscience\nexperiment\n"),
		LinearModelPath: writeModelFile(t, dir, "pdf.model", "science 0.5\nshopping -2.0\n"),
		URLModelPath:    writeModelFile(t, dir, "url.model", "arxiv 3.0\namazon -3.0\n"),
		RequestTimeout:  5 * time.Second,
	}
	disp, err := dispatch.New(cfg, registry.FromConfig(cfg), zerolog.Nop())
	if err != nil {
		t.Fatalf("build dispatcher: %v", err)
	}
	srv := httptest.NewServer(httpapi.NewMux(disp))
	t.Cleanup(srv.Close)
	return srv
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

// httpPostMultipart posts a multipart body with a single file field.
func httpPostMultipart(t *testing.T, url, field, filename string, content []byte) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	_ = mw.Close()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, &buf)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}
