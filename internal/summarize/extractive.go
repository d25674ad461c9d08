package summarize

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Extractive summarization used whenever the language model is unavailable or
// returns unusable output. Sentences are scored with TF-IDF over the document
// and the best ones are returned in their original order.

var sentenceBoundary = regexp.MustCompile(`(?:[.!?]["')\]]?)(?:\s+|$)`)

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {}, "if": {},
	"of": {}, "at": {}, "by": {}, "for": {}, "with": {}, "about": {},
	"to": {}, "from": {}, "in": {}, "on": {}, "is": {}, "are": {}, "was": {},
	"were": {}, "be": {}, "been": {}, "being": {}, "it": {}, "its": {},
	"this": {}, "that": {}, "these": {}, "those": {}, "as": {}, "not": {},
	"no": {}, "so": {}, "than": {}, "then": {}, "there": {}, "here": {},
	"which": {}, "who": {}, "what": {}, "when": {}, "where": {}, "how": {},
	"he": {}, "she": {}, "they": {}, "we": {}, "you": {}, "i": {},
	"his": {}, "her": {}, "their": {}, "our": {}, "your": {}, "my": {},
	"has": {}, "have": {}, "had": {}, "do": {}, "does": {}, "did": {},
	"will": {}, "would": {}, "can": {}, "could": {}, "should": {},
	"may": {}, "might": {}, "into": {}, "over": {}, "under": {},
	"also": {}, "just": {}, "more": {}, "most": {}, "some": {}, "such": {},
}

// SplitSentences breaks text into sentences on terminal punctuation. Whitespace
// around each sentence is trimmed; empty fragments are dropped.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	last := 0
	for _, loc := range sentenceBoundary.FindAllStringIndex(text, -1) {
		s := strings.TrimSpace(text[last:loc[1]])
		if s != "" {
			sentences = append(sentences, s)
		}
		last = loc[1]
	}
	if rest := strings.TrimSpace(text[last:]); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

func tokenize(sentence string) []string {
	fields := strings.FieldsFunc(strings.ToLower(sentence), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, stop := stopwords[f]; stop {
			continue
		}
		if len(f) < 2 {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// TopSentences returns at most n sentences of text, chosen by TF-IDF score and
// emitted in their original order. If the text has n or fewer sentences, all of
// them come back verbatim.
func TopSentences(text string, n int) []string {
	if n <= 0 {
		return nil
	}

	sentences := SplitSentences(text)
	if len(sentences) <= n {
		return sentences
	}

	tokenized := make([][]string, len(sentences))
	docFreq := make(map[string]int)
	for i, s := range sentences {
		tokenized[i] = tokenize(s)
		seen := make(map[string]struct{})
		for _, tok := range tokenized[i] {
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			docFreq[tok]++
		}
	}

	total := float64(len(sentences))
	type scored struct {
		index int
		score float64
	}
	scoredSentences := make([]scored, len(sentences))
	for i, toks := range tokenized {
		var score float64
		if len(toks) > 0 {
			tf := make(map[string]int)
			for _, tok := range toks {
				tf[tok]++
			}
			for tok, count := range tf {
				idf := math.Log(total / float64(docFreq[tok]))
				score += float64(count) * idf
			}
		}
		scoredSentences[i] = scored{index: i, score: score}
	}

	sort.SliceStable(scoredSentences, func(a, b int) bool {
		return scoredSentences[a].score > scoredSentences[b].score
	})

	picked := scoredSentences[:n]
	sort.Slice(picked, func(a, b int) bool { return picked[a].index < picked[b].index })

	result := make([]string, n)
	for i, s := range picked {
		result[i] = sentences[s.index]
	}
	return result
}

// Summary joins the top n sentences into a single paragraph.
func Summary(text string, n int) string {
	return strings.Join(TopSentences(text, n), " ")
}
