package types

// EndpointKind distinguishes in-process models from models served remotely.
type EndpointKind string

const (
	// EndpointLocal is a model loaded into the gateway process from disk.
	EndpointLocal EndpointKind = "local"
	// EndpointRemote is a model hosted on the inference server over HTTP.
	EndpointRemote EndpointKind = "remote"
)

// Endpoint describes the dispatch target for one logical model name.
type Endpoint struct {
	// Logical model name used in classify requests.
	// example: bert
	Name string `json:"name" example:"bert"`
	// Kind of the endpoint: local or remote.
	// example: remote
	Kind EndpointKind `json:"kind" example:"remote"`
	// File path for local models; base prediction URL (without the
	// :predict verb) for remote models.
	// example: http://tfserving:8501/v1/models/bert_model
	Location string `json:"location" example:"http://tfserving:8501/v1/models/bert_model"`
}
