package providers

import (
	"strings"

	"github.com/spigell/job-matcher/internal/jobs"
	"github.com/spigell/job-matcher/internal/profile"
)

const (
	fallbackRole   = "Software Engineer"
	maxQuerySkills = 3
)

// searchTerm returns the primary role, or the first few skills when the
// profile names no role.
func searchTerm(p *profile.Profile) string {
	if p == nil {
		return ""
	}
	for _, role := range p.Roles {
		if role = strings.TrimSpace(role); role != "" {
			return role
		}
	}

	skills := make([]string, 0, maxQuerySkills)
	for _, skill := range p.Skills {
		if skill = strings.TrimSpace(skill); skill != "" {
			skills = append(skills, skill)
		}
		if len(skills) == maxQuerySkills {
			break
		}
	}

	return strings.Join(skills, " ")
}

// searchLocation returns the profile location unless it only says "remote".
func searchLocation(p *profile.Profile) string {
	if p == nil {
		return ""
	}
	location := jobs.CollapseSpace(p.Location)
	if location == "" || jobs.DetectRemote(location) {
		return ""
	}
	return location
}

// keywords returns lowercased roles followed by skills, without repeats.
func keywords(p *profile.Profile) []string {
	if p == nil {
		return nil
	}

	seen := make(map[string]struct{}, len(p.Roles)+len(p.Skills))
	result := make([]string, 0, len(p.Roles)+len(p.Skills))
	for _, values := range [][]string{p.Roles, p.Skills} {
		for _, value := range values {
			value = strings.ToLower(jobs.CollapseSpace(value))
			if value == "" {
				continue
			}
			if _, ok := seen[value]; ok {
				continue
			}
			seen[value] = struct{}{}
			result = append(result, value)
		}
	}

	return result
}
