package harmonic

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-wavyd/dsp/core"
)

// piMarker selects a multiple of π in a phase token.
const piMarker = "PI"

var partialSeparator = regexp.MustCompile(`[, ]+`)

// Pair is the unparsed textual form of one partial. An empty Phase means 0.
type Pair struct {
	Weight string
	Phase  string
}

// FromSpec builds a model from textual weight/phase pairs in harmonic order.
func FromSpec(pairs []Pair) (*Model, error) {
	if len(pairs) == 0 {
		return nil, fmt.Errorf("harmonic: empty spec: %w", core.ErrParse)
	}
	partials := make([]Partial, len(pairs))
	for i, pair := range pairs {
		w, err := parseWeight(pair.Weight)
		if err != nil {
			return nil, fmt.Errorf("harmonic: partial %d: %w", i+1, err)
		}
		p, err := parsePhase(pair.Phase)
		if err != nil {
			return nil, fmt.Errorf("harmonic: partial %d: %w", i+1, err)
		}
		partials[i] = Partial{Weight: w, Phase: p}
	}
	return New(partials)
}

// Parse builds a model from a spec string such as "1:0,0.5:PI 0.25".
// Partials are separated by any run of commas and spaces; weight and phase
// by a colon.
func Parse(spec string) (*Model, error) {
	pairs, err := SplitSpec(spec)
	if err != nil {
		return nil, err
	}
	return FromSpec(pairs)
}

// SplitSpec splits a spec string into its textual pairs without parsing
// the numbers.
func SplitSpec(spec string) ([]Pair, error) {
	spec = strings.Trim(strings.TrimSpace(spec), ", ")
	if spec == "" {
		return nil, fmt.Errorf("harmonic: empty spec: %w", core.ErrParse)
	}
	tokens := partialSeparator.Split(spec, -1)
	pairs := make([]Pair, len(tokens))
	for i, tok := range tokens {
		w, p, found := strings.Cut(tok, ":")
		if found && strings.Contains(p, ":") {
			return nil, fmt.Errorf("harmonic: partial %d: too many fields in %q: %w", i+1, tok, core.ErrParse)
		}
		pairs[i] = Pair{Weight: w, Phase: p}
	}
	return pairs, nil
}

// ParsePhase parses a phase token in radians. An empty token is 0, "PI" is
// π and a PI suffix multiplies the preceding number by π ("0.5PI", "-PI").
func ParsePhase(tok string) (float64, error) {
	v, err := parsePhase(tok)
	if err != nil {
		return 0, fmt.Errorf("harmonic: %w", err)
	}
	return v, nil
}

// parsePhase, parseWeight and parseNumber leave the package prefix to
// their callers.
func parsePhase(tok string) (float64, error) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return 0, nil
	}
	num, isPi := strings.CutSuffix(tok, piMarker)
	if !isPi {
		return parseNumber("phase", tok)
	}
	switch num {
	case "", "+":
		return math.Pi, nil
	case "-":
		return -math.Pi, nil
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid phase %q: %w", tok, core.ErrParse)
	}
	return v * math.Pi, nil
}

func parseWeight(tok string) (float64, error) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return 0, fmt.Errorf("missing weight: %w", core.ErrParse)
	}
	return parseNumber("weight", tok)
}

func parseNumber(what, tok string) (float64, error) {
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid %s %q: %w", what, tok, core.ErrParse)
	}
	return v, nil
}
