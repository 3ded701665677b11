package matching

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/job-matcher/internal/jobs"
	"github.com/spigell/job-matcher/internal/profile"
)

func salary(v float64) *float64 {
	return &v
}

func backendProfile() *profile.Profile {
	p := profile.New()
	p.AddSkill("Python")
	p.AddSkill("FastAPI")
	p.AddRole("Backend Engineer")
	return p
}

func TestScoreFullMatch(t *testing.T) {
	listing := &jobs.Listing{
		Source:      jobs.SourceAdzuna,
		Title:       "Senior Backend Engineer",
		Description: "Python FastAPI PostgreSQL",
		Remote:      true,
		Salary:      salary(150000),
		URL:         "https://example.com/1",
	}

	total, breakdown := Score(listing, backendProfile())
	assert.Equal(t, 64, total)
	assert.Equal(t, map[string]int{"title": 30, "skills": 14, "remote": 10, "salary": 10}, breakdown)
}

func TestScoreNoMatch(t *testing.T) {
	listing := &jobs.Listing{
		Source:      jobs.SourceArbeitNow,
		Title:       "Nurse",
		Description: "Night shifts at the clinic",
		URL:         "https://example.com/2",
	}

	total, breakdown := Score(listing, backendProfile())
	assert.Equal(t, 0, total)
	for key, points := range breakdown {
		assert.Zero(t, points, key)
	}
}

func TestScoreSkillsAreCapped(t *testing.T) {
	p := profile.New()
	description := ""
	for i := 0; i < 10; i++ {
		skill := fmt.Sprintf("skill%02d", i)
		p.AddSkill(skill)
		description += skill + " "
	}

	listing := &jobs.Listing{Title: "Engineer", Description: description, Remote: true, Salary: salary(1)}
	p.AddRole("Engineer")

	total, breakdown := Score(listing, p)
	assert.Equal(t, MaxSkillPoints, breakdown[BreakdownSkills])
	assert.Equal(t, MaxScore, total)
}

func TestScoreIsMonotonicInSkills(t *testing.T) {
	listing := &jobs.Listing{Title: "Go Developer", Description: "Go Kubernetes Terraform AWS"}

	p := profile.New()
	previous, _ := Score(listing, p)
	for _, skill := range []string{"Go", "Kubernetes", "Rust", "Terraform", "AWS"} {
		p.AddSkill(skill)
		current, _ := Score(listing, p)
		assert.GreaterOrEqual(t, current, previous, "adding %s lowered the score", skill)
		previous = current
	}
}

func TestScoreIsPure(t *testing.T) {
	listing := &jobs.Listing{Title: "Backend Engineer", Description: "Python", Salary: salary(10)}
	p := backendProfile()

	first, firstBreakdown := Score(listing, p)
	second, secondBreakdown := Score(listing, p)
	assert.Equal(t, first, second)
	assert.Equal(t, firstBreakdown, secondBreakdown)
	assert.Equal(t, []string{"Python", "FastAPI"}, p.Skills)
}

func TestScoreRangeAndNilInputs(t *testing.T) {
	total, _ := Score(nil, backendProfile())
	assert.Equal(t, 0, total)

	total, breakdown := Score(&jobs.Listing{Title: "x", Remote: true}, nil)
	assert.Equal(t, 10, total)
	require.Len(t, breakdown, 4)
}

func TestScoreTitleUsesAnyRoleWord(t *testing.T) {
	p := profile.New()
	p.AddRole("Site Reliability Engineer")

	total, breakdown := Score(&jobs.Listing{Title: "Reliability Lead"}, p)
	assert.Equal(t, TitlePoints, breakdown[BreakdownTitle])
	assert.Equal(t, TitlePoints, total)
}

func TestScoreQueryProfileIgnoresStopWords(t *testing.T) {
	p := profile.FromQuery("I want a job in Berlin")

	total, breakdown := Score(&jobs.Listing{Title: "Accountant", Location: "Hamburg"}, p)
	assert.Equal(t, 0, breakdown[BreakdownTitle])
	assert.Equal(t, 0, total)

	_, breakdown = Score(&jobs.Listing{Title: "Backend Developer Berlin"}, p)
	assert.Equal(t, TitlePoints, breakdown[BreakdownTitle])
}
