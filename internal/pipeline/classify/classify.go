package classify

// Classifier labels extracted text with technical domains, pulls candidate
// technical terms, and maps domains to CPC-style classification hints.
// CPCHints derives strictly from the domain list, never from the text.
type Classifier interface {
	Classify(text string) []string
	ExtractTerms(text string) []string
	CPCHints(domains []string) []string
}
