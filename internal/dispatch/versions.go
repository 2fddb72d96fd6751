package dispatch

import (
	"context"

	"classd/internal/registry"
)

// remoteVersionKey names the versions-map entry for a remote model.
func remoteVersionKey(name string) string { return name + "_model" }

// versionMap assembles the versions block of a response: static entries
// from configuration plus lazily fetched remote model versions. Remote
// fetches are best-effort; an unreachable metadata endpoint never fails
// the classification itself. Successful lookups are cached for the
// process lifetime.
func (d *Dispatcher) versionMap(ctx context.Context, modes map[string]bool) map[string]string {
	out := map[string]string{"classd_version": gatewayVersion}
	if d.cfg.LinearModelVersion != "" {
		out["linear_model"] = d.cfg.LinearModelVersion
	}
	if d.cfg.ModelsDate != "" {
		out["models_date"] = d.cfg.ModelsDate
	}
	for _, name := range []string{registry.ModelBert, registry.ModelImage} {
		if !modes[name] && !modes["auto"] {
			continue
		}
		if v := d.remoteVersion(ctx, name); v != "" {
			out[remoteVersionKey(name)] = v
		}
	}
	return out
}

func (d *Dispatcher) remoteVersion(ctx context.Context, name string) string {
	d.verMu.Lock()
	if v, ok := d.versions[name]; ok {
		d.verMu.Unlock()
		return v
	}
	d.verMu.Unlock()

	ep, err := d.reg.Resolve(name)
	if err != nil {
		return ""
	}
	v, err := d.client.ModelVersion(ctx, ep.Location)
	if err != nil {
		d.log.Debug().Err(err).Str("model", name).Msg("model version fetch failed")
		return ""
	}
	d.verMu.Lock()
	d.versions[name] = v
	d.verMu.Unlock()
	return v
}

func (d *Dispatcher) cachedVersions() map[string]string {
	d.verMu.Lock()
	defer d.verMu.Unlock()
	out := make(map[string]string, len(d.versions))
	for k, v := range d.versions {
		out[remoteVersionKey(k)] = v
	}
	return out
}
