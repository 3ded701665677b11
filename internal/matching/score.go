// Package matching scores listings against a candidate profile and ranks them.
package matching

import (
	"strings"

	"github.com/spigell/job-matcher/internal/jobs"
	"github.com/spigell/job-matcher/internal/profile"
)

const (
	TitlePoints    = 30
	SkillPoints    = 7
	MaxSkillPoints = 50
	RemotePoints   = 10
	SalaryPoints   = 10
	MaxScore       = 100
)

// Breakdown keys.
const (
	BreakdownTitle  = "title"
	BreakdownSkills = "skills"
	BreakdownRemote = "remote"
	BreakdownSalary = "salary"
)

// Score rates how well the listing fits the profile. It is a pure function of
// its arguments and always returns a total in [0, MaxScore].
//
//   - title: TitlePoints when any word of any role occurs in the title
//   - skills: SkillPoints per skill found in the title or description, up to MaxSkillPoints
//   - remote: RemotePoints when the listing is remote
//   - salary: SalaryPoints when a salary is known
func Score(l *jobs.Listing, p *profile.Profile) (int, map[string]int) {
	breakdown := map[string]int{
		BreakdownTitle:  0,
		BreakdownSkills: 0,
		BreakdownRemote: 0,
		BreakdownSalary: 0,
	}
	if l == nil {
		return 0, breakdown
	}
	if p == nil {
		p = profile.New()
	}

	title := strings.ToLower(l.Title)
	if titleMatches(title, p.Roles) {
		breakdown[BreakdownTitle] = TitlePoints
	}

	text := title + " " + strings.ToLower(l.Description)
	matched := 0
	for _, skill := range p.Skills {
		skill = strings.ToLower(strings.TrimSpace(skill))
		if skill != "" && strings.Contains(text, skill) {
			matched++
		}
	}
	breakdown[BreakdownSkills] = min(matched*SkillPoints, MaxSkillPoints)

	if l.Remote {
		breakdown[BreakdownRemote] = RemotePoints
	}
	if l.HasSalary() {
		breakdown[BreakdownSalary] = SalaryPoints
	}

	total := 0
	for _, points := range breakdown {
		total += points
	}

	return min(total, MaxScore), breakdown
}

func titleMatches(title string, roles []string) bool {
	for _, role := range roles {
		for _, word := range strings.Fields(strings.ToLower(role)) {
			if strings.Contains(title, word) {
				return true
			}
		}
	}
	return false
}
