package keywordClassifier

import (
	"sort"
	"strings"

	"github.com/akolanti/DocPipeAPI/internal/pipeline/classify"
)

const (
	minKeywordMatches = 2
	maxTerms          = 20
)

var techDomains = map[string][]string{
	"software": {
		"algorithm", "software", "computer", "processor", "application",
		"program", "code", "data", "server", "database", "interface",
		"api", "network", "cloud", "machine learning", "artificial intelligence",
	},
	"mechanical": {
		"mechanism", "device", "apparatus", "structure", "assembly",
		"component", "gear", "motor", "bearing", "valve", "actuator",
		"mechanical", "engine", "machine", "tool",
	},
	"electrical": {
		"circuit", "electrical", "electronic", "signal", "voltage",
		"current", "power", "transistor", "semiconductor", "microprocessor",
		"integrated circuit", "pcb", "conductor", "capacitor", "resistor",
	},
	"chemical": {
		"compound", "composition", "reaction", "molecule", "chemical",
		"synthesis", "catalyst", "polymer", "solvent", "reagent",
		"formulation", "mixture", "solution", "substance",
	},
	"biotechnology": {
		"protein", "gene", "cell", "biological", "organism", "dna",
		"rna", "enzyme", "antibody", "bacteria", "virus", "genetic",
		"biotechnology", "genome", "peptide",
	},
	"medical": {
		"treatment", "diagnosis", "therapeutic", "patient", "medical",
		"clinical", "disease", "therapy", "pharmaceutical", "drug",
		"medicine", "surgical", "healthcare", "diagnostic",
	},
	"telecommunications": {
		"wireless", "communication", "antenna", "frequency", "transmission",
		"receiver", "transmitter", "signal processing", "modulation",
		"bandwidth", "cellular", "5g", "radio",
	},
	"optics": {
		"optical", "laser", "light", "lens", "photon", "beam",
		"wavelength", "spectrum", "imaging", "camera", "display",
	},
}

var cpcMapping = map[string][]string{
	"software":           {"G06F"},
	"mechanical":         {"F16"},
	"electrical":         {"H01", "H02"},
	"chemical":           {"C07", "C08"},
	"biotechnology":      {"C12"},
	"medical":            {"A61"},
	"telecommunications": {"H04"},
	"optics":             {"G02"},
}

type keywordClassifier struct{}

// NewKeywordClassifier returns a Classifier backed by static keyword tables.
// It is deliberately cheap: a substring scan per domain keyword, no model.
func NewKeywordClassifier() classify.Classifier {
	return &keywordClassifier{}
}

// Classify returns the matched domains ordered by keyword hit count, or
// ["general"] when no domain reaches the minimum match threshold.
func (c *keywordClassifier) Classify(text string) []string {
	textLower := strings.ToLower(text)
	type domainScore struct {
		domain string
		score  int
	}

	var scored []domainScore
	for domain, keywords := range techDomains {
		matches := 0
		for _, keyword := range keywords {
			if strings.Contains(textLower, keyword) {
				matches++
			}
		}
		if matches >= minKeywordMatches {
			scored = append(scored, domainScore{domain, matches})
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].domain < scored[j].domain //stable output for equal scores
	})

	if len(scored) == 0 {
		return []string{"general"}
	}

	domains := make([]string, len(scored))
	for i, s := range scored {
		domains[i] = s.domain
	}
	return domains
}

// ExtractTerms pulls capitalized words that are not sentence starts, as a
// cheap proxy for acronyms and proper technical nouns. Order-preserving
// dedupe, capped at maxTerms.
func (c *keywordClassifier) ExtractTerms(text string) []string {
	words := strings.Fields(text)
	seen := make(map[string]struct{})
	var terms []string

	for i, word := range words {
		clean := strings.Trim(word, ".,;:!?()")
		if len(clean) <= 2 || i == 0 {
			continue
		}
		if clean[0] < 'A' || clean[0] > 'Z' {
			continue
		}
		if strings.HasSuffix(words[i-1], ".") {
			continue //likely a sentence start
		}
		if _, dup := seen[clean]; dup {
			continue
		}
		seen[clean] = struct{}{}
		terms = append(terms, clean)
		if len(terms) == maxTerms {
			break
		}
	}
	return terms
}

// CPCHints maps domains to CPC class prefixes through the static table.
// Output is deduplicated; treat it as an unordered set.
func (c *keywordClassifier) CPCHints(domains []string) []string {
	seen := make(map[string]struct{})
	var hints []string
	for _, domain := range domains {
		for _, hint := range cpcMapping[domain] {
			if _, dup := seen[hint]; dup {
				continue
			}
			seen[hint] = struct{}{}
			hints = append(hints, hint)
		}
	}
	return hints
}
