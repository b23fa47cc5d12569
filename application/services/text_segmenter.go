package services

import (
	"regexp"
	"strings"

	"doc-narrator-api/application/ports/inbound"
)

// textSegmenter splits text for collaborator consumption using a three-level
// fallback: sentence boundaries first, clause boundaries for oversized
// sentences, single spaces as the last resort. Terminal punctuation stays
// attached to the text that precedes it. A single word longer than maxLen is
// emitted as its own oversized chunk rather than split mid-word.
type textSegmenter struct {
	whitespaceRegexp *regexp.Regexp
	sentenceRegexp   *regexp.Regexp
	clauseRegexp     *regexp.Regexp
}

func NewTextSegmenter() inbound.TextSegmenterPort {
	return &textSegmenter{
		whitespaceRegexp: regexp.MustCompile(`\s+`),
		sentenceRegexp:   regexp.MustCompile(`[.!?]+`),
		clauseRegexp:     regexp.MustCompile(`[,;:]+`),
	}
}

func (s *textSegmenter) Segment(text string, maxLen int) []string {
	normalized := strings.TrimSpace(s.whitespaceRegexp.ReplaceAllString(text, " "))
	if normalized == "" {
		return nil
	}

	chunks := make([]string, 0)
	for _, sentence := range s.splitSentences(normalized) {
		if len(sentence) <= maxLen {
			chunks = append(chunks, sentence)
			continue
		}
		chunks = append(chunks, s.splitClauses(sentence, maxLen)...)
	}

	final := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if len(chunk) <= maxLen {
			final = append(final, chunk)
			continue
		}
		final = append(final, s.splitWords(chunk, maxLen)...)
	}

	return final
}

// splitSentences cuts on runs of terminal punctuation, keeping each run
// attached to the sentence before it.
func (s *textSegmenter) splitSentences(text string) []string {
	sentences := make([]string, 0)
	last := 0
	for _, m := range s.sentenceRegexp.FindAllStringIndex(text, -1) {
		sentence := strings.TrimSpace(text[last:m[1]])
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		last = m[1]
	}
	if rest := strings.TrimSpace(text[last:]); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

// splitClauses accumulates comma/semicolon/colon-delimited clauses into a
// running buffer, flushing whenever the next clause would overflow maxLen.
func (s *textSegmenter) splitClauses(sentence string, maxLen int) []string {
	chunks := make([]string, 0)
	current := ""
	for _, part := range splitKeepingSeparators(s.clauseRegexp, sentence) {
		if len(current)+len(part) <= maxLen {
			current += part
			continue
		}
		if trimmed := strings.TrimSpace(current); trimmed != "" {
			chunks = append(chunks, trimmed)
		}
		current = part
	}
	if trimmed := strings.TrimSpace(current); trimmed != "" {
		chunks = append(chunks, trimmed)
	}
	return chunks
}

// splitWords re-accumulates space-separated words under the same flush rule.
// Words longer than maxLen pass through unsplit.
func (s *textSegmenter) splitWords(chunk string, maxLen int) []string {
	chunks := make([]string, 0)
	current := ""
	for _, word := range strings.Split(chunk, " ") {
		if len(current)+len(word)+1 <= maxLen {
			current += word + " "
			continue
		}
		if trimmed := strings.TrimSpace(current); trimmed != "" {
			chunks = append(chunks, trimmed)
		}
		current = word + " "
	}
	if trimmed := strings.TrimSpace(current); trimmed != "" {
		chunks = append(chunks, trimmed)
	}
	return chunks
}

// splitKeepingSeparators splits s around matches of re, emitting the
// separator runs as their own parts so they reattach to whatever precedes
// them during accumulation.
func splitKeepingSeparators(re *regexp.Regexp, s string) []string {
	parts := make([]string, 0)
	last := 0
	for _, m := range re.FindAllStringIndex(s, -1) {
		parts = append(parts, s[last:m[0]], s[m[0]:m[1]])
		last = m[1]
	}
	return append(parts, s[last:])
}
