package e2e

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func TestE2E_HealthAndReady(t *testing.T) {
	serving := newFakeServing(t)
	gw := newGateway(t, serving.URL)

	resp, body := httpGet(t, gw.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/healthz %d %s", resp.StatusCode, string(body))
	}
	resp, body = httpGet(t, gw.URL+"/readyz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/readyz %d %s", resp.StatusCode, string(body))
	}
}

func TestE2E_ModelsAndStatus(t *testing.T) {
	serving := newFakeServing(t)
	gw := newGateway(t, serving.URL)

	resp, body := httpGet(t, gw.URL+"/models")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/models %d %s", resp.StatusCode, string(body))
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("/models content-type=%s", ct)
	}
	var modelsResp struct {
		Models []struct {
			Name string `json:"name"`
			Kind string `json:"kind"`
		} `json:"models"`
	}
	if err := json.Unmarshal(body, &modelsResp); err != nil {
		t.Fatalf("/models json: %v body=%s", err, string(body))
	}
	if len(modelsResp.Models) != 4 {
		t.Fatalf("expected 4 models, got %d", len(modelsResp.Models))
	}

	resp, body = httpGet(t, gw.URL+"/status")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/status %d %s", resp.StatusCode, string(body))
	}
	var statusResp struct {
		State     string `json:"state"`
		Endpoints []any  `json:"endpoints"`
	}
	if err := json.Unmarshal(body, &statusResp); err != nil {
		t.Fatalf("/status json: %v body=%s", err, string(body))
	}
	if statusResp.State != "ready" {
		t.Fatalf("state=%s", statusResp.State)
	}
	if len(statusResp.Endpoints) != 4 {
		t.Fatalf("expected 4 endpoints, got %d", len(statusResp.Endpoints))
	}
}

func TestE2E_URLClassifyFlow(t *testing.T) {
	serving := newFakeServing(t)
	gw := newGateway(t, serving.URL)

	payload := []byte(`{"urls":["https://arxiv.org/pdf/1607.01759.pdf","https://amazon.com/catalog/item.pdf"]}`)
	resp, body := httpPostJSON(t, gw.URL+"/classify/research-pub/url", payload)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/classify url %d %s", resp.StatusCode, string(body))
	}
	var urlResp struct {
		Predictions map[string]float64 `json:"predictions"`
	}
	if err := json.Unmarshal(body, &urlResp); err != nil {
		t.Fatalf("json: %v body=%s", err, string(body))
	}
	if len(urlResp.Predictions) != 2 {
		t.Fatalf("predictions=%v", urlResp.Predictions)
	}
	if urlResp.Predictions["https://arxiv.org/pdf/1607.01759.pdf"] <= 0.75 {
		t.Fatalf("arxiv score too low: %v", urlResp.Predictions)
	}
	if urlResp.Predictions["https://amazon.com/catalog/item.pdf"] >= 0.25 {
		t.Fatalf("amazon score too high: %v", urlResp.Predictions)
	}
}

func TestE2E_URLClassify_BadRequests(t *testing.T) {
	serving := newFakeServing(t)
	gw := newGateway(t, serving.URL)

	resp, body := httpPostJSON(t, gw.URL+"/classify/research-pub/url", []byte(`{"urls":[]}`))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty urls: %d %s", resp.StatusCode, string(body))
	}
	resp, body = httpPostJSON(t, gw.URL+"/classify/research-pub/url", []byte(`{not json`))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad json: %d %s", resp.StatusCode, string(body))
	}
}

func TestE2E_Classify_WrongContentType_415(t *testing.T) {
	serving := newFakeServing(t)
	gw := newGateway(t, serving.URL)

	resp, body := httpPostJSON(t, gw.URL+"/classify/research-pub/all", []byte(`{"x":1}`))
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d %s", resp.StatusCode, string(body))
	}
}

func TestE2E_Classify_MissingFilePart_400(t *testing.T) {
	serving := newFakeServing(t)
	gw := newGateway(t, serving.URL)

	resp, body := httpPostMultipart(t, gw.URL+"/classify/research-pub/all", "wrong_field", "a.pdf", []byte("%PDF"))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d %s", resp.StatusCode, string(body))
	}
	if !strings.Contains(string(body), "pdf_content") {
		t.Fatalf("error should name the expected field: %s", string(body))
	}
}

func TestE2E_Metrics(t *testing.T) {
	serving := newFakeServing(t)
	gw := newGateway(t, serving.URL)

	// drive one request through so the counters have something to show
	_, _ = httpGet(t, gw.URL+"/models")
	resp, body := httpGet(t, gw.URL+"/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/metrics %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "classd_") {
		t.Fatalf("expected classd metrics in output")
	}
}
