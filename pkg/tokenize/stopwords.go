package tokenize

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// StopWords is a set of normalized words excluded from extraction.
type StopWords map[string]struct{}

// NewStopWords builds a set from a list of words.
func NewStopWords(words ...string) StopWords {
	s := make(StopWords, len(words))
	for _, w := range words {
		s.Add(w)
	}
	return s
}

// Add inserts a word, lowercased and trimmed.
func (s StopWords) Add(word string) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word != "" {
		s[word] = struct{}{}
	}
}

// Contains reports whether word is a stop word. A nil set contains nothing.
func (s StopWords) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// Merge returns a new set holding the words of both sets.
func (s StopWords) Merge(other StopWords) StopWords {
	out := make(StopWords, len(s)+len(other))
	for w := range s {
		out[w] = struct{}{}
	}
	for w := range other {
		out[w] = struct{}{}
	}
	return out
}

// LoadStopWords reads a JSON stop-word list, either {"words": [...]} or a bare array.
func LoadStopWords(path string) (StopWords, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var wrapped struct {
		Words []string `json:"words"`
	}
	if err := json.NewDecoder(f).Decode(&wrapped); err == nil && len(wrapped.Words) > 0 {
		return NewStopWords(wrapped.Words...), nil
	}

	if _, err := f.Seek(0, 0); err != nil {
		return nil, err
	}
	var words []string
	if err := json.NewDecoder(f).Decode(&words); err != nil {
		return nil, fmt.Errorf("failed to parse stop words as object or array: %w", err)
	}
	return NewStopWords(words...), nil
}

// DefaultStopWords returns the built-in list for a language ("en" or "ja").
func DefaultStopWords(language string) StopWords {
	if language == "ja" {
		return NewStopWords(japaneseStopWords...)
	}
	return NewStopWords(englishStopWords...)
}

var englishStopWords = []string{
	"a", "about", "above", "after", "again", "against", "all", "also", "am", "among",
	"an", "and", "any", "are", "as", "at", "be", "because", "been", "before",
	"being", "below", "between", "both", "but", "by", "can", "could", "did", "do",
	"does", "doing", "down", "during", "each", "either", "else", "ever", "every", "few",
	"for", "from", "further", "had", "has", "have", "having", "he", "her", "here",
	"hers", "herself", "him", "himself", "his", "how", "however", "if", "in", "into",
	"is", "it", "its", "itself", "just", "may", "me", "might", "more", "most",
	"must", "my", "myself", "neither", "no", "nor", "not", "now", "of", "off",
	"on", "once", "only", "or", "other", "ought", "our", "ours", "ourselves", "out",
	"over", "own", "same", "shall", "she", "should", "so", "some", "such", "than",
	"that", "the", "their", "theirs", "them", "themselves", "then", "there", "these", "they",
	"this", "those", "through", "to", "too", "under", "until", "up", "upon", "us",
	"very", "was", "we", "were", "what", "when", "where", "whether", "which", "while",
	"who", "whom", "whose", "why", "will", "with", "within", "without", "would", "yet",
	"you", "your", "yours", "yourself", "yourselves",
}

var japaneseStopWords = []string{
	"する", "ある", "いる", "なる", "れる", "られる", "できる", "いう", "こと", "もの",
	"これ", "それ", "あれ", "どれ", "ここ", "そこ", "よう", "ため", "の", "ん",
}
