// Package schema validates the JSON messages exchanged with worker
// processes against embedded JSON schemas.
package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed request.json
var requestSchema json.RawMessage

//go:embed response.json
var responseSchema json.RawMessage

// Schema wraps a compiled JSON schema.
type Schema struct {
	schema *gojsonschema.Schema
}

// NewRequestSchema compiles the schema for messages sent to workers.
func NewRequestSchema() (*Schema, error) {
	return compile(requestSchema)
}

// NewResponseSchema compiles the schema for worker replies.
func NewResponseSchema() (*Schema, error) {
	return compile(responseSchema)
}

func compile(raw json.RawMessage) (*Schema, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, err
	}

	return &Schema{schema: schema}, nil
}

// Validate checks raw JSON against the schema and returns a
// *ValidationError describing every violation, or nil.
func (s *Schema) Validate(data []byte) error {
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return err
	}

	if result.Valid() {
		return nil
	}

	return &ValidationError{Result: result}
}

// ValidationError carries the individual schema violations.
type ValidationError struct {
	Result *gojsonschema.Result
}

func (e *ValidationError) Error() string {
	messages := make([]string, 0, len(e.Result.Errors()))
	for _, desc := range e.Result.Errors() {
		messages = append(messages, desc.String())
	}

	return fmt.Sprintf("schema validation failed: %s", strings.Join(messages, "; "))
}
