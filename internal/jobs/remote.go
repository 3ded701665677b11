package jobs

import "strings"

var remoteIndicators = []string{
	"remote",
	"work from home",
	"work-from-home",
	"wfh",
	"home office",
	"homeoffice",
	"home-based",
	"telecommut",
	"anywhere in the world",
}

// DetectRemote reports whether any of the texts mentions remote work.
func DetectRemote(texts ...string) bool {
	for _, text := range texts {
		lower := strings.ToLower(text)
		if lower == "" {
			continue
		}
		for _, indicator := range remoteIndicators {
			if strings.Contains(lower, indicator) {
				return true
			}
		}
	}
	return false
}
