// Package profile turns resumes and free-text queries into a candidate profile.
package profile

import "strings"

// Seniority is the candidate's career level.
type Seniority string

const (
	SeniorityIntern    Seniority = "intern"
	SeniorityJunior    Seniority = "junior"
	SeniorityMid       Seniority = "mid"
	SenioritySenior    Seniority = "senior"
	SeniorityLead      Seniority = "lead"
	SeniorityPrincipal Seniority = "principal"
	SeniorityExecutive Seniority = "executive"
)

var seniorityAliases = map[string]Seniority{
	"intern":       SeniorityIntern,
	"internship":   SeniorityIntern,
	"trainee":      SeniorityIntern,
	"entry":        SeniorityJunior,
	"entry-level":  SeniorityJunior,
	"entry level":  SeniorityJunior,
	"junior":       SeniorityJunior,
	"jr":           SeniorityJunior,
	"graduate":     SeniorityJunior,
	"mid":          SeniorityMid,
	"mid-level":    SeniorityMid,
	"mid level":    SeniorityMid,
	"middle":       SeniorityMid,
	"intermediate": SeniorityMid,
	"senior":       SenioritySenior,
	"sr":           SenioritySenior,
	"lead":         SeniorityLead,
	"team lead":    SeniorityLead,
	"staff":        SeniorityLead,
	"principal":    SeniorityPrincipal,
	"architect":    SeniorityPrincipal,
	"director":     SeniorityExecutive,
	"head":         SeniorityExecutive,
	"vp":           SeniorityExecutive,
	"executive":    SeniorityExecutive,
	"c-level":      SeniorityExecutive,
}

// ParseSeniority maps a free-text level onto a Seniority, returning an empty
// value when the text is not recognised.
func ParseSeniority(s string) Seniority {
	key := strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), ".")))
	if level, ok := seniorityAliases[key]; ok {
		return level
	}
	return ""
}

// Profile is the structured view of a job seeker. The zero value is usable;
// New returns one whose slices marshal as empty arrays.
type Profile struct {
	Skills           []string  `json:"skills"`
	Roles            []string  `json:"roles"`
	ExperienceYears  int       `json:"experience_years"`
	Location         string    `json:"location,omitempty"`
	RemotePreference bool      `json:"remote_preference"`
	Seniority        Seniority `json:"seniority,omitempty"`
}

// New returns an empty profile.
func New() *Profile {
	return &Profile{Skills: []string{}, Roles: []string{}}
}

// AddSkill adds a skill unless an equal one (ignoring case) is already known.
func (p *Profile) AddSkill(skill string) {
	p.Skills = appendUnique(p.Skills, skill)
}

// AddRole appends a role phrase, keeping priority order and skipping repeats.
func (p *Profile) AddRole(role string) {
	p.Roles = appendUnique(p.Roles, role)
}

// HasSkill reports whether the skill is known, ignoring case.
func (p *Profile) HasSkill(skill string) bool {
	return indexFold(p.Skills, strings.TrimSpace(skill)) >= 0
}

// Empty reports whether the profile has nothing to search for.
func (p *Profile) Empty() bool {
	return len(p.Skills) == 0 && len(p.Roles) == 0
}

func appendUnique(values []string, value string) []string {
	value = strings.Join(strings.Fields(value), " ")
	if value == "" || indexFold(values, value) >= 0 {
		return values
	}
	return append(values, value)
}

func indexFold(values []string, value string) int {
	for i, v := range values {
		if strings.EqualFold(v, value) {
			return i
		}
	}
	return -1
}
