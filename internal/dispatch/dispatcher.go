// Package dispatch routes classification requests to the configured
// local and remote model backends and combines their scores.
package dispatch

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"classd/internal/backend"
	"classd/internal/config"
	"classd/internal/extract"
	"classd/internal/model"
	"classd/internal/registry"
	"classd/pkg/types"
)

// gatewayVersion is reported in the versions map of every response.
const gatewayVersion = "0.1.0"

// auto-mode thresholds: when the linear score lands inside this band the
// text model is consulted as a second opinion.
const (
	autoLowerBound = 0.15
	autoUpperBound = 0.85
)

// Dispatcher owns the loaded local models and the remote backend client.
// All fields are read-only after New, so one Dispatcher serves concurrent
// requests without locking (the lazy version cache has its own mutex).
type Dispatcher struct {
	cfg      config.Config
	reg      *registry.Registry
	linear   *model.LinearModel
	urlModel *model.LinearModel
	vocab    *model.Vocab
	client   *backend.Client
	log      zerolog.Logger

	// extraction hooks; replaced in tests to avoid external tools
	extractText  func(ctx context.Context, pdf []byte) (string, error)
	extractImage func(ctx context.Context, pdf []byte, page int) ([][][]float32, error)

	start    time.Time
	requests atomic.Uint64

	verMu    sync.Mutex
	versions map[string]string
}

// New loads the local models named by the configuration and returns a
// ready dispatcher. Loading failures are startup-fatal for the caller.
func New(cfg config.Config, reg *registry.Registry, log zerolog.Logger) (*Dispatcher, error) {
	log.Info().Str("path", cfg.LinearModelPath).Msg("loading linear document model")
	linear, err := model.LoadLinear(cfg.LinearModelPath)
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", cfg.URLModelPath).Msg("loading linear URL model")
	urlModel, err := model.LoadLinear(cfg.URLModelPath)
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", cfg.BertVocabPath).Msg("loading text model vocabulary")
	vocab, err := model.LoadVocab(cfg.BertVocabPath)
	if err != nil {
		return nil, err
	}
	return &Dispatcher{
		cfg:          cfg,
		reg:          reg,
		linear:       linear,
		urlModel:     urlModel,
		vocab:        vocab,
		client:       backend.NewClient(0),
		log:          log,
		extractText:  extract.Text,
		extractImage: extract.Image,
		start:        time.Now(),
		versions:     make(map[string]string),
	}, nil
}

// outcome is the result of one classifier invocation.
type outcome struct {
	name  string
	score float64
	dur   time.Duration
	skip  string // non-empty: classifier not applicable, not an error
	err   error
}

// Classify routes one document to the classifiers selected by modes (a
// comma-separated subset of auto, linear, bert, image, all) and combines
// their scores. Named classifiers run concurrently; a failing backend is
// annotated on the response and the request still succeeds while at
// least one backend scored.
func (d *Dispatcher) Classify(ctx context.Context, modes string, pdf []byte, traceName string) (types.ClassifyResponse, error) {
	d.requests.Add(1)
	ctx, cancel := context.WithTimeout(ctx, d.cfg.RequestTimeout)
	defer cancel()

	// A selection that names no usable classifier is a caller error, not
	// a backend failure.
	modeList, unknown := parseModes(modes)
	if len(modeList) == 0 {
		return types.ClassifyResponse{}, emptyModeError{unknown: unknown}
	}

	timing := make(map[string]float64)
	var failures []types.BackendFailure
	for _, name := range unknown {
		_, err := d.reg.Resolve(name)
		failures = append(failures, types.BackendFailure{Model: name, Reason: err.Error()})
	}

	// token-based classifiers share one text extraction pass
	var tokens []string
	if modeList[registry.ModelLinear] || modeList[registry.ModelBert] || modeList["auto"] {
		start := time.Now()
		text, err := d.extractText(ctx, pdf)
		timing["extract_text"] = msSince(start)
		if err != nil {
			d.log.Warn().Err(err).Str("trace", traceName).Msg("text extraction failed")
		} else {
			tokens = model.ExtractTokens(text)
		}
	}

	var outcomes []outcome
	if modeList["auto"] {
		outcomes = d.classifyAuto(ctx, pdf, tokens)
	} else {
		outcomes = d.fanOut(ctx, modeList, pdf, tokens)
	}

	scores := make(map[string]float64)
	for _, o := range outcomes {
		timing["classify_"+o.name] = o.dur.Seconds() * 1000
		switch {
		case o.err != nil:
			classificationsTotal.WithLabelValues(o.name, outcomeError).Inc()
			d.log.Warn().Err(o.err).Str("model", o.name).Str("trace", traceName).Msg("classifier failed")
			failures = append(failures, types.BackendFailure{Model: o.name, Reason: o.err.Error()})
		case o.skip != "":
			classificationsTotal.WithLabelValues(o.name, outcomeSkipped).Inc()
			d.log.Debug().Str("model", o.name).Str("trace", traceName).Str("reason", o.skip).Msg("classifier skipped")
			failures = append(failures, types.BackendFailure{Model: o.name, Reason: o.skip})
		default:
			classificationsTotal.WithLabelValues(o.name, outcomeOK).Inc()
			backendDuration.WithLabelValues(o.name).Observe(o.dur.Seconds())
			scores[o.name] = o.score
		}
	}

	if len(scores) == 0 {
		return types.ClassifyResponse{}, allBackendsFailedError{failures: failures}
	}

	ensemble, label, confidence := Combine(scores)
	return types.ClassifyResponse{
		Status:        "success",
		Scores:        scores,
		EnsembleScore: ensemble,
		Label:         label,
		Confidence:    confidence,
		Failures:      failures,
		Versions:      d.versionMap(ctx, modeList),
		TimingMS:      timing,
	}, nil
}

// fanOut runs the selected classifiers concurrently and gathers their
// outcomes. Completion order is irrelevant: results are keyed by name.
func (d *Dispatcher) fanOut(ctx context.Context, modes map[string]bool, pdf []byte, tokens []string) []outcome {
	var wg sync.WaitGroup
	results := make(chan outcome, len(modes))
	run := func(f func() outcome) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- f()
		}()
	}
	if modes[registry.ModelLinear] {
		run(func() outcome { return d.runLinear(tokens) })
	}
	if modes[registry.ModelBert] {
		run(func() outcome { return d.runBert(ctx, tokens) })
	}
	if modes[registry.ModelImage] {
		run(func() outcome { return d.runImage(ctx, pdf) })
	}
	wg.Wait()
	close(results)

	out := make([]outcome, 0, len(modes))
	for o := range results {
		out = append(out, o)
	}
	return out
}

// classifyAuto implements the staged policy: the cheap linear model goes
// first and the remote text model is consulted only when the linear score
// is inconclusive. Without extractable text the page image decides.
func (d *Dispatcher) classifyAuto(ctx context.Context, pdf []byte, tokens []string) []outcome {
	if len(tokens) == 0 {
		return []outcome{d.runImage(ctx, pdf)}
	}
	lin := d.runLinear(tokens)
	out := []outcome{lin}
	if lin.err == nil && lin.skip == "" && lin.score >= autoLowerBound && lin.score <= autoUpperBound {
		out = append(out, d.runBert(ctx, tokens))
	}
	return out
}

func (d *Dispatcher) runLinear(tokens []string) outcome {
	start := time.Now()
	if len(tokens) == 0 {
		return outcome{name: registry.ModelLinear, skip: "no text extracted"}
	}
	label, conf := d.linear.Predict(tokens)
	return outcome{
		name:  registry.ModelLinear,
		score: model.EncodeConfidence(label, conf),
		dur:   time.Since(start),
	}
}

func (d *Dispatcher) runBert(ctx context.Context, tokens []string) outcome {
	start := time.Now()
	if len(tokens) == 0 {
		return outcome{name: registry.ModelBert, skip: "no text extracted"}
	}
	ep, err := d.reg.Resolve(registry.ModelBert)
	if err != nil {
		return outcome{name: registry.ModelBert, err: err}
	}
	ids := d.vocab.IDs(model.TrimTokens(tokens, model.MaxBertTokens))
	inputIDs, inputMask, segmentIDs := model.BertInputs(ids)
	other, research, err := d.client.PredictText(ctx, ep.Location, inputIDs, inputMask, segmentIDs)
	if err != nil {
		return outcome{name: registry.ModelBert, err: err, dur: time.Since(start)}
	}
	return outcome{
		name:  registry.ModelBert,
		score: encodeTwoClass(other, research),
		dur:   time.Since(start),
	}
}

func (d *Dispatcher) runImage(ctx context.Context, pdf []byte) outcome {
	start := time.Now()
	img, err := d.extractImage(ctx, pdf, 0)
	if err != nil {
		if err == extract.ErrNoImage {
			return outcome{name: registry.ModelImage, skip: err.Error(), dur: time.Since(start)}
		}
		return outcome{name: registry.ModelImage, err: err, dur: time.Since(start)}
	}
	ep, err := d.reg.Resolve(registry.ModelImage)
	if err != nil {
		return outcome{name: registry.ModelImage, err: err}
	}
	other, research, err := d.client.PredictImage(ctx, ep.Location, img)
	if err != nil {
		return outcome{name: registry.ModelImage, err: err, dur: time.Since(start)}
	}
	return outcome{
		name:  registry.ModelImage,
		score: encodeTwoClass(other, research),
		dur:   time.Since(start),
	}
}

// encodeTwoClass folds a remote [p_other, p_research] row into the
// encoded confidence scheme.
func encodeTwoClass(other, research float64) float64 {
	if research > other {
		return model.EncodeConfidence(model.LabelResearch, research)
	}
	return model.EncodeConfidence(model.LabelOther, other)
}

// ClassifyURLs scores each URL independently with the local URL model.
func (d *Dispatcher) ClassifyURLs(urls []string) map[string]float64 {
	d.requests.Add(1)
	out := make(map[string]float64, len(urls))
	for _, u := range urls {
		label, conf := d.urlModel.Predict(model.TokenizeURL(u))
		out[u] = model.EncodeConfidence(label, conf)
	}
	return out
}

// Models lists the configured endpoints.
func (d *Dispatcher) Models() []types.Endpoint { return d.reg.Models() }

// Ready reports whether the local models are loaded.
func (d *Dispatcher) Ready() bool {
	return d.linear != nil && d.urlModel != nil && d.vocab != nil
}

// Status summarizes the gateway for GET /status.
func (d *Dispatcher) Status() types.StatusResponse {
	versions := d.cachedVersions()
	eps := d.reg.Models()
	statuses := make([]types.EndpointStatus, 0, len(eps))
	for _, ep := range eps {
		st := types.EndpointStatus{Name: ep.Name, Kind: ep.Kind, Location: ep.Location}
		if v, ok := versions[remoteVersionKey(ep.Name)]; ok {
			st.Version = v
		}
		statuses = append(statuses, st)
	}
	return types.StatusResponse{
		State:          "ready",
		UptimeSeconds:  int64(time.Since(d.start).Seconds()),
		ServerTimeUnix: time.Now().Unix(),
		RequestsTotal:  d.requests.Load(),
		Endpoints:      statuses,
	}
}

// parseModes splits the comma-separated mode string. "all" expands to the
// three document classifiers. Unknown names are returned separately so
// the caller can annotate them.
func parseModes(modes string) (selected map[string]bool, unknown []string) {
	selected = make(map[string]bool)
	for _, m := range strings.Split(modes, ",") {
		m = strings.TrimSpace(strings.ToLower(m))
		switch m {
		case "":
		case "all":
			selected[registry.ModelImage] = true
			selected[registry.ModelLinear] = true
			selected[registry.ModelBert] = true
		case "auto", registry.ModelLinear, registry.ModelBert, registry.ModelImage:
			selected[m] = true
		default:
			unknown = append(unknown, m)
		}
	}
	// auto subsumes the named classifiers it stages itself
	if selected["auto"] {
		for k := range selected {
			if k != "auto" {
				delete(selected, k)
			}
		}
	}
	return selected, unknown
}

func msSince(t time.Time) float64 { return time.Since(t).Seconds() * 1000 }
