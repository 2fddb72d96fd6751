// Package backend implements the HTTP client side of the inference
// server's versioned prediction protocol: GET <model-url> for version
// metadata and POST <model-url>:predict for predictions.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

type unavailableError struct{ msg string }

func (e unavailableError) Error() string { return e.msg }

// IsUnavailable reports whether err indicates an unreachable or failing
// backend (connection refused, non-2xx, bad payload).
func IsUnavailable(err error) bool {
	var ue unavailableError
	return errors.As(err, &ue)
}

type timeoutError struct{ msg string }

func (e timeoutError) Error() string { return e.msg }

// IsTimeout reports whether err indicates that the backend did not answer
// within the request deadline.
func IsTimeout(err error) bool {
	var te timeoutError
	return errors.As(err, &te)
}

// Client talks to the inference server. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
}

// NewClient builds a client with a pooled transport. Deadlines are
// carried by the per-call contexts, not by the client itself.
func NewClient(connectTimeout time.Duration) *Client {
	if connectTimeout <= 0 {
		connectTimeout = 5 * time.Second
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &Client{httpClient: &http.Client{Transport: tr, Timeout: 0}}
}

type versionStatus struct {
	State   string `json:"state"`
	Version string `json:"version"`
}

type versionResponse struct {
	ModelVersionStatus []versionStatus `json:"model_version_status"`
}

// ModelVersion fetches version metadata for a served model and returns
// its version string. The model must report state AVAILABLE.
func (c *Client) ModelVersion(ctx context.Context, modelURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, modelURL, nil)
	if err != nil {
		return "", err
	}
	body, err := c.do(req)
	if err != nil {
		return "", err
	}
	var vr versionResponse
	if err := json.Unmarshal(body, &vr); err != nil {
		return "", unavailableError{msg: "model metadata: " + err.Error()}
	}
	if len(vr.ModelVersionStatus) == 0 {
		return "", unavailableError{msg: "model metadata: no version status"}
	}
	st := vr.ModelVersionStatus[0]
	if st.State != "AVAILABLE" {
		return "", unavailableError{msg: "model not available: state " + st.State}
	}
	return st.Version, nil
}

// bertPredictRequest is the columnar "inputs" REST form. The served text
// model graph uses four named input placeholders.
type bertPredictRequest struct {
	SignatureName string         `json:"signature_name"`
	Inputs        map[string]any `json:"inputs"`
}

type bertPredictResponse struct {
	Outputs [][]float64 `json:"outputs"`
}

// PredictText runs the remote text model. The response carries one output
// row [p_other, p_research].
func (c *Client) PredictText(ctx context.Context, modelURL string, inputIDs, inputMask, segmentIDs []int) (other, research float64, err error) {
	payload := bertPredictRequest{
		SignatureName: "serving_default",
		Inputs: map[string]any{
			"input_ids":   [][]int{inputIDs},
			"input_mask":  [][]int{inputMask},
			"label_ids":   []int{0}, // scalar placeholder, unused for prediction
			"segment_ids": [][]int{segmentIDs},
		},
	}
	body, err := c.predict(ctx, modelURL, payload)
	if err != nil {
		return 0, 0, err
	}
	var pr bertPredictResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return 0, 0, unavailableError{msg: "predict response: " + err.Error()}
	}
	return twoClassRow(pr.Outputs)
}

type imagePredictRequest struct {
	SignatureName string          `json:"signature_name"`
	Instances     [][][][]float32 `json:"instances"`
}

type imagePredictResponse struct {
	Predictions [][]float64 `json:"predictions"`
}

// PredictImage runs the remote image model on one page image tensor of
// shape (299, 299, 3). The response carries one row [p_other, p_research].
func (c *Client) PredictImage(ctx context.Context, modelURL string, img [][][]float32) (other, research float64, err error) {
	payload := imagePredictRequest{
		SignatureName: "serving_default",
		Instances:     [][][][]float32{img},
	}
	body, err := c.predict(ctx, modelURL, payload)
	if err != nil {
		return 0, 0, err
	}
	var pr imagePredictResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return 0, 0, unavailableError{msg: "predict response: " + err.Error()}
	}
	return twoClassRow(pr.Predictions)
}

func (c *Client) predict(ctx context.Context, modelURL string, payload any) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, modelURL+":predict", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(req.Context().Err(), context.DeadlineExceeded) {
			return nil, timeoutError{msg: "backend timeout: " + req.URL.Host}
		}
		return nil, unavailableError{msg: err.Error()}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, unavailableError{msg: fmt.Sprintf("backend http error: %s: %s", resp.Status, string(b))}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(req.Context().Err(), context.DeadlineExceeded) {
			return nil, timeoutError{msg: "backend timeout: " + req.URL.Host}
		}
		return nil, unavailableError{msg: err.Error()}
	}
	return body, nil
}

func twoClassRow(rows [][]float64) (other, research float64, err error) {
	if len(rows) == 0 || len(rows[0]) < 2 {
		return 0, 0, unavailableError{msg: "predict response: expected one two-class row"}
	}
	return rows[0][0], rows[0][1], nil
}
