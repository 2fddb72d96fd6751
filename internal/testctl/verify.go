package testctl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/exec"
	"strings"
	"time"

	"classd/internal/backend"
	"classd/internal/config"
)

// checkTools verifies the external extraction tools are on PATH. The
// gateway shells out to both of them at request time.
func checkTools() error {
	for _, tool := range []string{"pdftotext", "convert"} {
		path, err := exec.LookPath(tool)
		if err != nil {
			return fmt.Errorf("%s not found on PATH: %w", tool, err)
		}
		info("[testctl] %s: %s", tool, path)
	}
	return nil
}

// checkBackends asks each configured model server whether its model is
// loaded and AVAILABLE, using the same client the gateway uses.
func checkBackends() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client := backend.NewClient(5 * time.Second)
	targets := []struct {
		env   string
		model string
	}{
		{config.EnvBertServerURL, "bert_model"},
		{config.EnvImageServerURL, "image_model"},
	}
	for _, tgt := range targets {
		base := envStr(tgt.env, "")
		if base == "" {
			return fmt.Errorf("%s is not set", tgt.env)
		}
		url := strings.TrimRight(base, "/") + "/v1/models/" + tgt.model
		version, err := client.ModelVersion(ctx, url)
		if err != nil {
			return fmt.Errorf("%s (%s): %w", tgt.model, url, err)
		}
		info("[testctl] %s available, version %s", tgt.model, version)
	}
	return nil
}

// smokeURL classifies the given URLs through a running gateway.
func smokeURL(cfg *Config, urls []string) error {
	payload, err := json.Marshal(map[string][]string{"urls": urls})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	endpoint := strings.TrimRight(cfg.BaseURL, "/") + "/classify/research-pub/url"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway unreachable at %s: %w", cfg.BaseURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway returned %d", resp.StatusCode)
	}
	var out struct {
		Predictions map[string]float64 `json:"predictions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}
	for u, score := range out.Predictions {
		info("[testctl] %.4f  %s", score, u)
	}
	return nil
}
