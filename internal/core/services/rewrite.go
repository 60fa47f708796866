package services

import (
	"fmt"
	"regexp"
	"strings"
)

// Stopwords removed from retrieval queries. Filler and question words
// carry no retrieval signal against textbook material.
var queryStopwords = map[string]struct{}{
	"please": {}, "explain": {}, "what": {}, "is": {}, "are": {}, "the": {},
	"a": {}, "an": {}, "and": {}, "or": {}, "of": {}, "to": {}, "in": {},
	"on": {}, "for": {}, "with": {}, "about": {}, "me": {}, "give": {},
	"show": {}, "how": {}, "why": {}, "does": {}, "do": {}, "did": {},
	"can": {}, "could": {}, "should": {}, "brief": {}, "short": {},
	"concise": {}, "overview": {}, "summarize": {}, "detail": {},
	"detailed": {}, "comprehensive": {},
}

// Acronym expansions for the electronics and telecommunication domain.
// Expansions are appended after the original token as whole phrases.
var acronymExpansions = map[string][]string{
	"bjt":    {"bipolar junction transistor"},
	"fet":    {"field effect transistor"},
	"mosfet": {"metal oxide semiconductor field effect transistor"},
	"opamp":  {"operational amplifier", "op-amp"},
	"op-amp": {"operational amplifier", "opamp"},
	"fft":    {"fast fourier transform"},
	"dft":    {"discrete fourier transform"},
	"psd":    {"power spectral density"},
	"lti":    {"linear time invariant"},
	"v-i":    {"voltage current"},
	"kvl":    {"kirchhoff voltage law"},
	"kcl":    {"kirchhoff current law"},
	"rms":    {"root mean square"},
	"snr":    {"signal to noise ratio"},
}

// Synonym expansions for terms textbooks name in several ways.
var synonymExpansions = map[string][]string{
	"bandgap":           {"forbidden energy gap", "energy band gap", "Eg"},
	"reactance":         {"capacitive reactance", "inductive reactance", "Xc", "Xl"},
	"transfer function": {"H(jω)", "frequency response"},
	"cutoff frequency":  {"corner frequency", "-3 dB frequency", "f_c"},
	"biasing":           {"dc operating point", "Q-point", "quiescent point"},
	"small-signal":      {"incremental", "linearized"},
	"gain":              {"amplification", "A_v", "voltage gain"},
	"impedance":         {"Z", "equivalent impedance"},
	"admittance":        {"Y", "inverse impedance"},
	"emf":               {"electromotive force"},
	"resonance":         {"resonant frequency", "ω0", "f0"},
}

// Intent categories detected by substring match against the question.
// Slice order fixes the tag order in the output.
var intentHints = []struct {
	name  string
	words []string
}{
	{"define", []string{"definition", "describe", "what is"}},
	{"derive", []string{"derive", "derivation", "prove", "show that"}},
	{"formula", []string{"formula", "equation", "expression"}},
	{"example", []string{"example", "numerical", "problem"}},
	{"application", []string{"application", "use", "practical"}},
	{"comparison", []string{"compare", "versus", "advantage", "disadvantage", "pros", "cons"}},
}

// Unit words become symbols so "50 ohms" and "50 Ω" retrieve the same
// passages. Applied in order; earlier patterns may shadow later ones.
var unitNormalizers = []struct {
	pattern *regexp.Regexp
	symbol  string
}{
	{regexp.MustCompile(`(?i)\bohms?\b`), "Ω"},
	{regexp.MustCompile(`(?i)\bmicro\b`), "µ"},
	{regexp.MustCompile(`(?i)\bmega\b`), "M"},
	{regexp.MustCompile(`(?i)\bkilo\b`), "k"},
	{regexp.MustCompile(`(?i)\bdeg(?:ree)?s?\s*c\b`), "°C"},
	{regexp.MustCompile(`(?i)\bdegrees?\s*f\b`), "°F"},
}

var (
	punctRe = regexp.MustCompile(`[^\w+\-./°Ωµ ]+`)
	wsRe    = regexp.MustCompile(`\s+`)
	wordRe  = regexp.MustCompile(`[A-Za-z0-9+_\-./]+`)
)

const (
	maxQueryTokens   = 48
	backfillTokens   = 10
	minContentTokens = 3
)

// QueryRewriter turns a raw student question into an expanded
// retrieval query. It is deterministic: the same question and history
// always yield the same query.
type QueryRewriter struct{}

// NewQueryRewriter creates a query rewriter.
func NewQueryRewriter() *QueryRewriter {
	return &QueryRewriter{}
}

// Optimize rewrites a question for retrieval: normalise, drop filler,
// expand acronyms and synonyms, tag intent, cap length. When the
// question alone is too thin it backfills topic words from the last
// line of chatHistory. An empty question yields an empty query.
func (r *QueryRewriter) Optimize(question, chatHistory string) string {
	if question == "" {
		return ""
	}

	q0 := normaliseUnits(stripPunct(strings.ToLower(question)))
	toks := removeStopwords(tokenize(q0))

	// Follow-ups like "and its applications?" carry almost no content
	// words of their own; borrow the topic from the previous line.
	if len(toks) < minContentTokens {
		toks = append(toks, mostRecentTopic(chatHistory)...)
	}

	toks = expandTerms(toks, acronymExpansions)
	toks = expandTerms(toks, synonymExpansions)
	toks = dedupeFold(toks)
	if len(toks) > maxQueryTokens {
		toks = toks[:maxQueryTokens]
	}

	for _, tag := range extractIntent(q0) {
		toks = append(toks, fmt.Sprintf("[%s]", tag))
	}

	query := strings.TrimSpace(strings.Join(toks, " "))
	if query == "" {
		return strings.TrimSpace(question)
	}
	return query
}

func normaliseUnits(text string) string {
	for _, n := range unitNormalizers {
		text = n.pattern.ReplaceAllString(text, n.symbol)
	}
	return text
}

func stripPunct(text string) string {
	t := punctRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(wsRe.ReplaceAllString(t, " "))
}

func tokenize(s string) []string {
	return wordRe.FindAllString(s, -1)
}

func removeStopwords(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, w := range tokens {
		if _, stop := queryStopwords[strings.ToLower(w)]; stop {
			continue
		}
		if isAllDigits(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// expandTerms appends the expansion phrases for every token that has
// an entry in table, directly after the token itself.
func expandTerms(tokens []string, table map[string][]string) []string {
	out := make([]string, 0, len(tokens))
	for _, w := range tokens {
		out = append(out, w)
		if exps, ok := table[strings.ToLower(w)]; ok {
			out = append(out, exps...)
		}
	}
	return out
}

func extractIntent(questionLower string) []string {
	var hints []string
	for _, h := range intentHints {
		for _, w := range h.words {
			if strings.Contains(questionLower, w) {
				hints = append(hints, h.name)
				break
			}
		}
	}
	return hints
}

// mostRecentTopic extracts up to backfillTokens trailing content words
// from the last non-empty line of the chat history.
func mostRecentTopic(chatHistory string) []string {
	var tail string
	for _, line := range strings.Split(chatHistory, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			tail = trimmed
		}
	}
	if tail == "" {
		return nil
	}
	toks := removeStopwords(tokenize(normaliseUnits(stripPunct(strings.ToLower(tail)))))
	if len(toks) > backfillTokens {
		toks = toks[len(toks)-backfillTokens:]
	}
	return toks
}

func dedupeFold(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, w := range tokens {
		k := strings.ToLower(w)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, w)
	}
	return out
}
