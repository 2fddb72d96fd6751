package model

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"
)

// Text shorter than this yields no tokens; such documents carry too
// little signal for the text classifiers.
const MinTextBytes = 300

// MaxBertTokens is the sequence length the text model was trained with.
const MaxBertTokens = 512

// ExtractTokens lowercases text and splits it into alphabetic tokens,
// dropping single-character fragments. Returns nil when the raw text is
// too short to be useful.
func ExtractTokens(text string) []string {
	if len(text) < MinTextBytes {
		return nil
	}
	var tokens []string
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// TokenizeURL splits a URL into lowercase alphanumeric terms, so
// "https://arxiv.org/pdf/x.pdf" yields {https, arxiv, org, pdf, x, pdf}.
func TokenizeURL(url string) []string {
	return strings.FieldsFunc(strings.ToLower(url), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// TrimTokens caps a token sequence at max entries.
func TrimTokens(tokens []string, max int) []string {
	if len(tokens) <= max {
		return tokens
	}
	return tokens[:max]
}

// Vocab maps tokens to the integer ids the text model was trained with.
// Read-only after load.
type Vocab struct {
	ids map[string]int
}

// LoadVocab reads a vocabulary file: one token per line, the line number
// (from zero) is the token id.
func LoadVocab(path string) (*Vocab, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocab: %w", err)
	}
	defer f.Close()

	v := &Vocab{ids: make(map[string]int)}
	sc := bufio.NewScanner(f)
	id := 0
	for sc.Scan() {
		tok := strings.TrimSpace(sc.Text())
		if tok == "" {
			id++
			continue
		}
		if _, dup := v.ids[tok]; !dup {
			v.ids[tok] = id
		}
		id++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read vocab: %w", err)
	}
	if len(v.ids) == 0 {
		return nil, fmt.Errorf("vocab %s: empty", path)
	}
	return v, nil
}

// Size returns the number of entries in the vocabulary.
func (v *Vocab) Size() int { return len(v.ids) }

// IDs converts tokens to vocabulary ids, skipping out-of-vocabulary
// tokens.
func (v *Vocab) IDs(tokens []string) []int {
	out := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		if id, ok := v.ids[tok]; ok {
			out = append(out, id)
		}
	}
	return out
}

// BertInputs builds the fixed-length id, mask and segment vectors for the
// text model: ids padded with zeros to MaxBertTokens, mask 1 for real
// tokens and 0 for padding, segments all zero.
func BertInputs(ids []int) (inputIDs, inputMask, segmentIDs []int) {
	if len(ids) > MaxBertTokens {
		ids = ids[:MaxBertTokens]
	}
	n := len(ids)
	inputIDs = make([]int, MaxBertTokens)
	inputMask = make([]int, MaxBertTokens)
	segmentIDs = make([]int, MaxBertTokens)
	copy(inputIDs, ids)
	for i := 0; i < n; i++ {
		inputMask[i] = 1
	}
	return inputIDs, inputMask, segmentIDs
}
