package profile

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/spigell/job-matcher/internal/jobs"
)

var (
	skillKeys      = []string{"skills", "technical_skills", "key_skills", "technologies"}
	roleKeys       = []string{"roles", "target_roles", "job_titles", "titles", "role"}
	experienceKeys = []string{"experience_years", "years_of_experience", "experience", "years"}
	locationKeys   = []string{"location", "preferred_location", "city"}
	remoteKeys     = []string{"remote_preference", "remote", "prefers_remote"}
	seniorityKeys  = []string{"seniority", "level", "seniority_level"}

	leadingNumber = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// Parse reads whatever the document-understanding service returned and keeps
// every field it can make sense of. It never fails: unknown or malformed
// fields fall back to their defaults.
func Parse(raw string) *Profile {
	p := New()

	var data map[string]any
	if err := json.Unmarshal([]byte(extractJSON(raw)), &data); err == nil && data != nil {
		fromMap(p, data)
		return p
	}

	fromLines(p, raw)
	return p
}

func fromMap(p *Profile, data map[string]any) {
	fields := make(map[string]any, len(data))
	for key, value := range data {
		fields[normalizeKey(key)] = value
	}

	for _, skill := range coerceStrings(lookup(fields, skillKeys)) {
		p.AddSkill(skill)
	}
	for _, role := range coerceStrings(lookup(fields, roleKeys)) {
		p.AddRole(role)
	}

	p.ExperienceYears = coerceYears(lookup(fields, experienceKeys))
	p.Location = coerceString(lookup(fields, locationKeys))
	p.Seniority = ParseSeniority(coerceString(lookup(fields, seniorityKeys)))
	p.RemotePreference = coerceBool(lookup(fields, remoteKeys)) || jobs.DetectRemote(p.Location)
}

// fromLines handles answers like "Skills: Go, SQL" when the model ignored
// the JSON instruction.
func fromLines(p *Profile, raw string) {
	fields := make(map[string]any)
	for _, line := range strings.Split(raw, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = normalizeKey(strings.Trim(key, " \t-*#`\""))
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		if _, seen := fields[key]; !seen {
			fields[key] = value
		}
	}

	fromMap(p, fields)
}

func lookup(fields map[string]any, keys []string) any {
	for _, key := range keys {
		if value, ok := fields[key]; ok && value != nil {
			return value
		}
	}
	return nil
}

func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	key = strings.ReplaceAll(key, "-", "_")
	return strings.Join(strings.Fields(key), "_")
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "{") {
		return raw
	}

	// Prose around the object.
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start != -1 && end > start {
		return raw[start : end+1]
	}

	return raw
}

func coerceStrings(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return val
	case string:
		return splitList(val)
	default:
		if s := coerceString(val); s != "" {
			return []string{s}
		}
		return nil
	}
}

func splitList(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n' || r == '|'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.Trim(strings.TrimSpace(part), "[]\"'-*• ")
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func coerceYears(v any) int {
	var years float64
	switch val := v.(type) {
	case float64:
		years = val
	case int:
		years = float64(val)
	case string:
		match := leadingNumber.FindString(val)
		if match == "" {
			return 0
		}
		f, err := strconv.ParseFloat(match, 64)
		if err != nil {
			return 0
		}
		years = f
	default:
		return 0
	}

	if math.IsNaN(years) || math.IsInf(years, 0) || years <= 0 {
		return 0
	}
	if years > 80 {
		return 0
	}
	return int(years)
}

func coerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		return lower == "true" || lower == "yes" || lower == "remote"
	case float64:
		return val != 0
	default:
		return false
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		s := strings.TrimSpace(val)
		if strings.EqualFold(s, "null") || strings.EqualFold(s, "n/a") || strings.EqualFold(s, "unknown") {
			return ""
		}
		return s
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		return ""
	}
}
