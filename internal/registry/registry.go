package registry

import (
	"sort"
	"strings"

	"classd/internal/config"
	"classd/pkg/types"
)

// Logical model names accepted in classify requests.
const (
	ModelLinear = "linear"
	ModelBert   = "bert"
	ModelImage  = "image"
	ModelURL    = "url"
)

// Served model names on the inference server side.
const (
	remoteBertModel  = "bert_model"
	remoteImageModel = "image_model"
)

type modelNotFoundError struct{ name string }

func (e modelNotFoundError) Error() string { return "model not found: " + e.name }

// ErrModelNotFound returns an error for an unconfigured logical model name.
func ErrModelNotFound(name string) error { return modelNotFoundError{name: name} }

// IsModelNotFound reports whether the error indicates an unknown model name.
func IsModelNotFound(err error) bool {
	_, ok := err.(modelNotFoundError)
	return ok
}

// Registry maps logical model names to dispatch targets. It is built once
// from the configuration and read-only afterwards.
type Registry struct {
	endpoints map[string]types.Endpoint
}

// FromConfig resolves every configured model to an endpoint. Remote
// locations follow the versioned prediction protocol:
// <base>/v1/models/<served_name>, with the :predict verb appended by the
// backend client.
func FromConfig(cfg config.Config) *Registry {
	eps := map[string]types.Endpoint{
		ModelLinear: {Name: ModelLinear, Kind: types.EndpointLocal, Location: cfg.LinearModelPath},
		ModelURL:    {Name: ModelURL, Kind: types.EndpointLocal, Location: cfg.URLModelPath},
		ModelBert:   {Name: ModelBert, Kind: types.EndpointRemote, Location: predictionURL(cfg.BertServerURL, remoteBertModel)},
		ModelImage:  {Name: ModelImage, Kind: types.EndpointRemote, Location: predictionURL(cfg.ImageServerURL, remoteImageModel)},
	}
	return &Registry{endpoints: eps}
}

// Resolve returns the endpoint for a logical model name. It is a pure
// lookup: same input, same output, no side effects.
func (r *Registry) Resolve(name string) (types.Endpoint, error) {
	ep, ok := r.endpoints[name]
	if !ok {
		return types.Endpoint{}, ErrModelNotFound(name)
	}
	return ep, nil
}

// Models lists all configured endpoints sorted by name.
func (r *Registry) Models() []types.Endpoint {
	out := make([]types.Endpoint, 0, len(r.endpoints))
	for _, ep := range r.endpoints {
		out = append(out, ep)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func predictionURL(base, servedName string) string {
	return strings.TrimRight(base, "/") + "/v1/models/" + servedName
}
