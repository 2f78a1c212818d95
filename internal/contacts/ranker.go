// Package contacts locates and ranks recruiting contacts for a company and
// job title, using a third-party people-search provider.
package contacts

import (
	"regexp"
	"sort"
	"strings"
)

// recruitingKeywords matches titles that indicate a recruiting-relevant role.
// A contact whose title matches none of these is excluded from ranking.
var recruitingKeywords = regexp.MustCompile(`(?i)(recruit|talent acquisition|talent|sourc|staffing|people ops|hiring manager|human resources|\bhr\b)`)

// phraseStopwords are dropped when deriving search phrases from a job title:
// articles, seniority and employment-type words, roman numerals, and generic
// corporate suffixes.
var phraseStopwords = map[string]bool{
	"a": true, "an": true, "the": true, "of": true, "and": true, "or": true,
	"for": true, "with": true, "at": true, "in": true, "to": true,
	"senior": true, "sr": true, "junior": true, "jr": true, "lead": true,
	"principal": true, "staff": true, "head": true, "chief": true,
	"remote": true, "hybrid": true, "onsite": true, "contract": true,
	"contractor": true, "fulltime": true, "full": true, "part": true,
	"time": true, "intern": true, "internship": true, "temporary": true,
	"i": true, "ii": true, "iii": true, "iv": true, "v": true, "vi": true,
	"inc": true, "llc": true, "ltd": true, "corp": true, "co": true,
}

// seniorityBonus awards points per seniority word present in a contact title
var seniorityBonus = map[string]int{
	"principal":   6,
	"director":    6,
	"head":        6,
	"vp":          6,
	"lead":        5,
	"senior":      5,
	"manager":     4,
	"partner":     4,
	"recruiter":   4,
	"sourcer":     4,
	"specialist":  3,
	"hr":          3,
	"coordinator": 2,
}

var tokenPattern = regexp.MustCompile(`[a-z0-9+#]+`)

// Candidate is a raw contact record from the people-search provider
type Candidate struct {
	Name        string
	Title       string
	ProviderID  string
	LinkedinURL string
}

// RankedCandidate is a candidate with its relevance score
type RankedCandidate struct {
	Candidate
	Score int
}

// DerivePhrases tokenizes a job title, strips stopwords, and returns
// de-duplicated unigrams plus adjacent-token bigrams in original order.
// "Senior Machine Learning Engineer" yields
// ["machine", "learning", "engineer", "machine learning", "learning engineer"].
func DerivePhrases(jobTitle string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(jobTitle), -1)

	var tokens []string
	for _, tok := range raw {
		if !phraseStopwords[tok] {
			tokens = append(tokens, tok)
		}
	}

	seen := make(map[string]bool)
	var phrases []string
	add := func(p string) {
		if p != "" && !seen[p] {
			seen[p] = true
			phrases = append(phrases, p)
		}
	}

	for _, tok := range tokens {
		add(tok)
	}
	for i := 0; i+1 < len(tokens); i++ {
		add(tokens[i] + " " + tokens[i+1])
	}

	return phrases
}

// ScoreTitle computes the relevance score for a contact title against the
// derived job-title phrases. Returns 0 when the title contains no recruiting
// keyword, which excludes the contact entirely.
func ScoreTitle(contactTitle string, phrases []string) int {
	title := strings.ToLower(strings.TrimSpace(contactTitle))
	if title == "" || !recruitingKeywords.MatchString(title) {
		return 0
	}

	score := 5 // base for any recruiting keyword

	for word, bonus := range seniorityBonus {
		if strings.Contains(title, word) {
			score += bonus
		}
	}

	for _, phrase := range phrases {
		if strings.Contains(title, phrase) {
			score += 3
		}
	}

	if strings.Contains(title, "talent acquisition") {
		score += 3
	}
	if strings.Contains(title, "recruit") {
		score += 3
	}
	if strings.Contains(title, "sourc") {
		score += 2
	}

	return score
}

// Rank filters candidates to recruiting-relevant titles and orders them
// best-first. The sort is stable: ties keep the provider's original order.
// An empty result is valid and expected when no contact matches.
func Rank(jobTitle string, candidates []Candidate) []RankedCandidate {
	phrases := DerivePhrases(jobTitle)

	var ranked []RankedCandidate
	for _, c := range candidates {
		if score := ScoreTitle(c.Title, phrases); score > 0 {
			ranked = append(ranked, RankedCandidate{Candidate: c, Score: score})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return ranked
}
