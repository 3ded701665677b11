package profile

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/ai"
	"github.com/spigell/job-matcher/internal/metrics"
	"github.com/spigell/job-matcher/internal/utils"
)

var (
	// ErrInput is returned when neither a resume nor a query was supplied.
	ErrInput = errors.New("either a resume or a query is required")
	// ErrExtraction is returned when the document could not be understood and
	// there is no query to fall back to.
	ErrExtraction = errors.New("failed to extract a profile from the resume")
)

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200
	defaultTimeout      = 30 * time.Second
	noQuery             = "none"
)

// Input is what a caller can hand to the extractor.
type Input struct {
	Document []byte
	MimeType string
	Filename string
	Query    string
}

// HasDocument reports whether a non-empty document is attached.
func (in Input) HasDocument() bool {
	return len(in.Document) > 0
}

// Extractor produces a candidate profile with one document-understanding call.
type Extractor struct {
	reader    ai.DocumentReader
	logger    *zap.Logger
	maxLogLen int
	timeout   time.Duration
}

// NewExtractor creates an Extractor. A nil reader is allowed: every request
// then takes the query fallback path.
func NewExtractor(reader ai.DocumentReader, logger *zap.Logger, maxLogLength int, timeout time.Duration) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Extractor{
		reader:    reader,
		logger:    logger,
		maxLogLen: maxLogLength,
		timeout:   timeout,
	}
}

// Extract returns a best-effort profile. Only ErrInput and ErrExtraction are
// ever returned as errors.
func (e *Extractor) Extract(ctx context.Context, in Input) (*Profile, error) {
	query := strings.TrimSpace(in.Query)
	if !in.HasDocument() && query == "" {
		metrics.ExtractionTotal.WithLabelValues(metrics.ExtractionRejected).Inc()
		return nil, ErrInput
	}

	raw, err := e.understand(ctx, in, query)
	if err != nil {
		if query == "" {
			metrics.ExtractionTotal.WithLabelValues(metrics.ExtractionFailed).Inc()
			e.logger.Warn("document understanding failed without a query to fall back to", zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
		}

		metrics.ExtractionTotal.WithLabelValues(metrics.ExtractionDegraded).Inc()
		e.logger.Warn("document understanding failed, using query keywords", zap.Error(err))
		return FromQuery(query), nil
	}

	p := Parse(raw)
	if query != "" {
		mergeQuery(p, query)
	}

	metrics.ExtractionTotal.WithLabelValues(metrics.ExtractionParsed).Inc()
	e.logger.Debug("profile extracted",
		zap.Strings("skills", p.Skills),
		zap.Strings("roles", p.Roles),
		zap.Int("experience_years", p.ExperienceYears),
		zap.String("seniority", string(p.Seniority)),
	)

	return p, nil
}

func (e *Extractor) understand(ctx context.Context, in Input, query string) (string, error) {
	if e.reader == nil {
		return "", errors.New("document understanding is not configured")
	}

	var doc *ai.Document
	if in.HasDocument() {
		doc = &ai.Document{Data: in.Document, MimeType: in.MimeType, Name: in.Filename}
	}

	instruction := buildInstruction(doc != nil, query)

	e.logger.Debug("document understanding request",
		zap.Bool("has_document", doc != nil),
		zap.Int("document_bytes", len(in.Document)),
		zap.Int("instruction_length", utf8.RuneCountInString(instruction)),
	)

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := e.reader.Understand(ctx, instruction, doc)
	if err != nil {
		return "", err
	}

	e.logger.Debug("document understanding response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, e.maxLogLen)),
	)

	return raw, nil
}

func buildInstruction(hasDocument bool, query string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "{{SOURCE}}\n\nReturn a JSON object with skills, roles, experience_years, location, remote_preference and seniority.\n\nCandidate query:\n{{QUERY}}"
	}

	source := "Use the candidate query below as the only source of information."
	if hasDocument {
		source = "The attached document is the candidate's resume. Use it as the primary source; the candidate query below refines what they are looking for."
	}

	if query == "" {
		query = noQuery
	}

	prompt := strings.ReplaceAll(template, "{{SOURCE}}", source)
	return strings.ReplaceAll(prompt, "{{QUERY}}", query)
}

// mergeQuery makes sure an explicit query is never lost when the model
// returned a thin profile.
func mergeQuery(p *Profile, query string) {
	fallback := FromQuery(query)
	if len(p.Roles) == 0 {
		for _, role := range fallback.Roles {
			p.AddRole(role)
		}
	}
	if len(p.Skills) == 0 {
		for _, skill := range fallback.Skills {
			p.AddSkill(skill)
		}
	}
	if fallback.RemotePreference {
		p.RemotePreference = true
	}
	if p.Seniority == "" {
		p.Seniority = fallback.Seniority
	}
}
