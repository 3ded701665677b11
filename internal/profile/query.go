package profile

import (
	"strings"
	"unicode"

	"github.com/spigell/job-matcher/internal/jobs"
)

var queryStopWords = map[string]bool{
	"a": true, "an": true, "and": true, "or": true, "the": true, "for": true,
	"with": true, "in": true, "on": true, "at": true, "of": true, "to": true,
	"as": true, "by": true, "is": true, "are": true, "i": true, "me": true,
	"my": true, "am": true, "looking": true, "want": true, "need": true,
	"seeking": true, "job": true, "jobs": true, "position": true,
	"positions": true, "role": true, "roles": true, "work": true,
	"remote": true, "remotely": true, "hybrid": true, "onsite": true,
	"years": true, "year": true, "experience": true,
}

// FromQuery builds the minimal profile used when no document-understanding
// result is available. Only keyword tokens of the query are used: they
// become skills, and those of two or more runes form the single role.
func FromQuery(query string) *Profile {
	p := New()
	query = jobs.CollapseSpace(query)
	if query == "" {
		return p
	}

	p.RemotePreference = jobs.DetectRemote(query)

	var role []string
	for _, token := range Tokens(query) {
		if level := ParseSeniority(token); level != "" {
			if p.Seniority == "" {
				p.Seniority = level
			}
			continue
		}
		p.AddSkill(token)
		if len([]rune(token)) > 1 {
			role = append(role, token)
		}
	}

	if len(role) > 0 {
		p.AddRole(strings.Join(role, " "))
	}

	return p
}

// Tokens splits text into lowercase keywords, keeping characters that matter
// in technology names ("c++", "c#", "node.js") and dropping stop words.
func Tokens(text string) []string {
	var (
		tokens []string
		seen   = make(map[string]bool)
		word   strings.Builder
	)

	flush := func() {
		w := strings.Trim(word.String(), ".")
		word.Reset()
		if len([]rune(w)) < 2 && w != "c" && w != "r" {
			return
		}
		if queryStopWords[w] || seen[w] {
			return
		}
		seen[w] = true
		tokens = append(tokens, w)
	}

	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' {
			word.WriteRune(r)
			continue
		}
		flush()
	}
	flush()

	return tokens
}
