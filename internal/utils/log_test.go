package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{name: "non-positive limit", input: "resume text", limit: 0, expect: ""},
		{name: "fits", input: "golang", limit: 10, expect: "golang"},
		{name: "exact length", input: "golang", limit: 6, expect: "golang"},
		{name: "truncated", input: "senior golang engineer", limit: 6, expect: "senior..."},
		{name: "whitespace trimmed first", input: "\n  {\"skills\": []}  \n", limit: 4, expect: "{\"sk..."},
		{name: "counts runes", input: "Entwickler für Go", limit: 12, expect: "Entwickler f..."},
		{name: "multibyte boundary", input: "разработчик", limit: 3, expect: "раз..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expect, TruncateForLog(tt.input, tt.limit))
		})
	}
}
