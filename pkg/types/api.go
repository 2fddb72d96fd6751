package types

// BackendFailure annotates one classifier that could not contribute a score.
type BackendFailure struct {
	// Logical model name that failed.
	// example: image
	Model string `json:"model" example:"image"`
	// Human-readable failure reason.
	// example: backend timeout after 10s
	Reason string `json:"reason" example:"backend timeout after 10s"`
}

// ClassifyResponse is the aggregated result of one classification request.
type ClassifyResponse struct {
	// Overall request status: success when at least one classifier scored.
	// example: success
	Status string `json:"status" example:"success"`
	// Per-model encoded confidence scores in [0,1]; 1.0 means certainly a
	// research publication, 0.0 certainly not.
	Scores map[string]float64 `json:"scores"`
	// Mean of the per-model scores.
	// example: 0.94
	EnsembleScore float64 `json:"ensemble_score" example:"0.94"`
	// Decoded decision label: research or other.
	// example: research
	Label string `json:"label" example:"research"`
	// Confidence in the decision, in [0,1].
	// example: 0.88
	Confidence float64 `json:"confidence" example:"0.88"`
	// Classifiers that were requested but produced no score.
	Failures []BackendFailure `json:"failures,omitempty"`
	// Model and build version identifiers.
	Versions map[string]string `json:"versions,omitempty"`
	// Per-step wall time in milliseconds.
	TimingMS map[string]float64 `json:"timing_ms,omitempty"`
}

// URLClassifyRequest is the payload of POST /classify/research-pub/url.
type URLClassifyRequest struct {
	// URLs to classify independently.
	// example: ["https://arxiv.org/pdf/1607.01759.pdf"]
	URLs []string `json:"urls"`
}

// URLClassifyResponse maps each input URL to its encoded confidence.
type URLClassifyResponse struct {
	Predictions map[string]float64 `json:"predictions"`
}

// EndpointStatus reports one configured endpoint for GET /status.
type EndpointStatus struct {
	Name     string       `json:"name"`
	Kind     EndpointKind `json:"kind"`
	Location string       `json:"location"`
	// Model version reported by the backend, when known.
	// example: 20190807
	Version string `json:"version,omitempty"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Overall gateway state (ready once local models are loaded).
	// example: ready
	State string `json:"state" example:"ready"`
	// Uptime of the gateway in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Total classification requests handled since start.
	// example: 42
	RequestsTotal uint64 `json:"requests_total" example:"42"`
	// Configured endpoints with any known backend versions.
	Endpoints []EndpointStatus `json:"endpoints"`
}

// ModelsResponse wraps the endpoint list returned by GET /models.
type ModelsResponse struct {
	Models []Endpoint `json:"models"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}
