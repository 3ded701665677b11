package matching

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/job-matcher/internal/jobs"
)

func TestRankIsStableAndDescending(t *testing.T) {
	matched := []Matched{
		{Listing: jobs.Listing{ExternalID: "a"}, Score: 10},
		{Listing: jobs.Listing{ExternalID: "b"}, Score: 40},
		{Listing: jobs.Listing{ExternalID: "c"}, Score: 10},
		{Listing: jobs.Listing{ExternalID: "d"}, Score: 40},
		{Listing: jobs.Listing{ExternalID: "e"}, Score: 0},
	}

	ranked := Rank(matched, 0)
	ids := make([]string, 0, len(ranked))
	for i, m := range ranked {
		ids = append(ids, m.Listing.ExternalID)
		if i > 0 {
			assert.LessOrEqual(t, m.Score, ranked[i-1].Score)
		}
	}
	assert.Equal(t, []string{"b", "d", "a", "c", "e"}, ids)
}

func TestRankTruncates(t *testing.T) {
	matched := make([]Matched, 0, 120)
	for i := 0; i < 120; i++ {
		matched = append(matched, Matched{Listing: jobs.Listing{ExternalID: fmt.Sprint(i)}, Score: i % 7})
	}

	assert.Len(t, Rank(matched, 0), TopK)

	matched = matched[:3]
	assert.Len(t, Rank(matched, 10), 3)
}

func TestScoreAllPreservesOrder(t *testing.T) {
	listings := []jobs.Listing{
		{ExternalID: "1", Title: "Backend Engineer"},
		{ExternalID: "2", Title: "Chef"},
	}

	matched := ScoreAll(listings, backendProfile())
	require.Len(t, matched, 2)
	assert.Equal(t, "1", matched[0].Listing.ExternalID)
	assert.Equal(t, TitlePoints, matched[0].Score)
	assert.Equal(t, 0, matched[1].Score)
}
