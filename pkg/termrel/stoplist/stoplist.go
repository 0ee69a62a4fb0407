package stoplist

import (
	"sort"
	"strings"
)

// Manager holds the stop-word lemmas used to switch term matching from
// lemma comparison to surface-text comparison.
type Manager struct {
	stops map[string]struct{}
}

// NewManager creates a new stoplist manager
func NewManager(initialStops []string) *Manager {
	stops := make(map[string]struct{}, len(initialStops))
	for _, s := range initialStops {
		stops[strings.ToLower(s)] = struct{}{}
	}
	return &Manager{stops: stops}
}

// English returns a manager seeded with the default English function words.
func English() *Manager {
	return NewManager(englishStops)
}

// IsStop checks if a lemma is a stopword. Comparison is case-insensitive.
func (m *Manager) IsStop(lemma string) bool {
	_, ok := m.stops[strings.ToLower(lemma)]
	return ok
}

// Add adds a lemma to the stoplist
func (m *Manager) Add(lemma string) {
	m.stops[strings.ToLower(lemma)] = struct{}{}
}

// Remove removes a lemma from the stoplist
func (m *Manager) Remove(lemma string) {
	delete(m.stops, strings.ToLower(lemma))
}

// All returns all stopwords, sorted
func (m *Manager) All() []string {
	result := make([]string, 0, len(m.stops))
	for s := range m.stops {
		result = append(result, s)
	}
	sort.Strings(result)
	return result
}

// Len returns the number of stopwords.
func (m *Manager) Len() int {
	return len(m.stops)
}

var englishStops = []string{
	"a", "about", "above", "after", "again", "against", "all", "also", "am", "an",
	"and", "any", "are", "as", "at", "be", "because", "been", "before", "being",
	"below", "between", "both", "but", "by", "can", "could", "did", "do", "does",
	"doing", "down", "during", "each", "either", "else", "even", "ever", "every",
	"few", "for", "from", "further", "had", "has", "have", "having", "he", "her",
	"here", "hers", "herself", "him", "himself", "his", "how", "however", "i", "if",
	"in", "into", "is", "it", "its", "itself", "just", "may", "me", "might", "more",
	"most", "much", "must", "my", "myself", "neither", "no", "nor", "not", "now",
	"of", "off", "on", "once", "only", "or", "other", "our", "ours", "ourselves",
	"out", "over", "own", "same", "she", "should", "so", "some", "such", "than",
	"that", "the", "their", "theirs", "them", "themselves", "then", "there",
	"these", "they", "this", "those", "through", "to", "too", "under", "until",
	"up", "upon", "us", "very", "was", "we", "were", "what", "when", "where",
	"whether", "which", "while", "who", "whom", "whose", "why", "will", "with",
	"would", "yet", "you", "your", "yours", "yourself", "yourselves",
}
