package rubric

import (
	"regexp"
	"strings"
)

// CheckResult holds the outcome of the deterministic text checks. These checks
// cover the mechanically verifiable criteria; the judge's generative evaluation
// remains authoritative for the subjective ones.
type CheckResult struct {
	WordCountOK   bool
	NoEmDash      bool
	NoBanned      bool
	HasBulletList bool
	BannedHits    []string
}

// bannedPatterns are precompiled word-boundary matchers for the banned words.
var bannedPatterns = func() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(bannedWords))
	for _, word := range bannedWords {
		patterns[word] = regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`)
	}
	return patterns
}()

// CheckText runs the deterministic checks against a letter body.
func CheckText(text string) CheckResult {
	words := len(strings.Fields(text))
	lower := strings.ToLower(text)

	result := CheckResult{
		WordCountOK:   words >= MinWords && words <= MaxWords,
		NoEmDash:      !strings.Contains(text, "—") && !strings.Contains(text, ";"),
		NoBanned:      true,
		HasBulletList: hasBulletList(text),
	}

	for _, banned := range bannedWords {
		if bannedPatterns[banned].MatchString(lower) {
			result.NoBanned = false
			result.BannedHits = append(result.BannedHits, banned)
		}
	}

	return result
}

// WordCount returns the whitespace-delimited word count of a letter body.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// hasBulletList reports whether the text contains at least two bullet lines.
func hasBulletList(text string) bool {
	bullets := 0
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") || strings.HasPrefix(trimmed, "•") {
			bullets++
		}
	}
	return bullets >= 2
}
