package model

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// LinearModel is a bag-of-words linear text classifier. The model file is
// plain text, one term per line:
//
//	term<space>weight
//
// Positive weights pull towards the research label, negative towards
// other. A line with term "__bias__" sets the intercept. Lines starting
// with '#' are ignored. The model is read-only after load and safe for
// concurrent use.
type LinearModel struct {
	weights map[string]float64
	bias    float64
}

// biasTerm is the reserved term name carrying the intercept.
const biasTerm = "__bias__"

// LoadLinear reads a linear model file from disk.
func LoadLinear(path string) (*LinearModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open linear model: %w", err)
	}
	defer f.Close()

	m := &LinearModel{weights: make(map[string]float64)}
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("linear model %s:%d: expected 'term weight', got %q", path, lineNo, line)
		}
		w, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("linear model %s:%d: bad weight %q: %w", path, lineNo, fields[1], err)
		}
		if fields[0] == biasTerm {
			m.bias = w
			continue
		}
		m.weights[fields[0]] = w
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read linear model: %w", err)
	}
	if len(m.weights) == 0 {
		return nil, fmt.Errorf("linear model %s: no terms", path)
	}
	return m, nil
}

// Terms returns the number of weighted terms in the model.
func (m *LinearModel) Terms() int { return len(m.weights) }

// Predict scores a token sequence and returns the winning label with its
// probability in [0.5, 1.0].
func (m *LinearModel) Predict(tokens []string) (label string, confidence float64) {
	score := m.bias
	for _, tok := range tokens {
		score += m.weights[tok]
	}
	p := 1.0 / (1.0 + math.Exp(-score))
	if p >= 0.5 {
		return LabelResearch, p
	}
	return LabelOther, 1.0 - p
}
