package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldAIProvider is the structured log field key for the document-understanding backend.
	FieldAIProvider = "ai_provider"
	// FieldModel is the structured log field key for the AI model identifier.
	FieldModel = "ai_model"
	// FieldProvider is the structured log field key for a job-listing provider.
	FieldProvider = "provider"
	// FieldRequestID is the structured log field key for the inbound request id.
	FieldRequestID = "request_id"
	// FieldUserID is the structured log field key for an upstream-authenticated user.
	FieldUserID = "user_id"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// If the logger is nil or no fields are supplied, the input logger is returned
// unchanged, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// AIFields returns the fields that describe the AI backend and model.
func AIFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldAIProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// WithAI attaches the AI backend fields to the provided logger.
func WithAI(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, AIFields(provider, model)...)
}

// WithProvider attaches the job-listing provider name to the provided logger.
func WithProvider(logger *zap.Logger, provider string) *zap.Logger {
	return WithFields(logger, StringFields(StringField{Key: FieldProvider, Value: provider})...)
}

// WithRequest attaches the request and (optional) user identifiers.
func WithRequest(logger *zap.Logger, requestID, userID string) *zap.Logger {
	return WithFields(logger, StringFields(
		StringField{Key: FieldRequestID, Value: requestID},
		StringField{Key: FieldUserID, Value: userID},
	)...)
}
