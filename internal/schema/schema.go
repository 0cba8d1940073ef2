// Package schema defines the closed set of structured-answer shapes the
// pipeline can request from the answering backend. Each question family has
// one fixed record shape, a Gemini response schema for structured output,
// and a JSON Schema document used to validate what actually came back.
// Keeping the set closed (instead of runtime-introspected structures) keeps
// validation exhaustive at compile time.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"google.golang.org/genai"
)

// Kind identifies one answer shape. It travels with every question and is
// persisted alongside the answer payload.
type Kind string

const (
	KindOrganization        Kind = "organization"
	KindOrganizationCyber   Kind = "organization_cyber"
	KindCyberRelevance      Kind = "cyber_relevance"
	KindCyberResponsibility Kind = "cyber_responsibility"
	KindCyberOrigin         Kind = "cyber_origin"
)

// Field is one flattened output column. Order matters for export.
type Field struct {
	Name  string
	Value string
}

// Value is a decoded structured answer.
type Value interface {
	Kind() Kind
	// Flatten returns the answer as ordered export columns.
	Flatten() []Field
}

// definition binds a kind to its request schema, validation schema and
// decoder.
type definition struct {
	genaiSchema *genai.Schema
	jsonSchema  string
	decode      func([]byte) (Value, error)
}

var registry = map[Kind]definition{
	KindOrganization: {
		genaiSchema: organizationGenAISchema,
		jsonSchema:  organizationJSONSchema,
		decode:      decodeInto[*OrganizationAnswer],
	},
	KindOrganizationCyber: {
		genaiSchema: organizationCyberGenAISchema,
		jsonSchema:  organizationCyberJSONSchema,
		decode:      decodeInto[*OrganizationCyberAnswer],
	},
	KindCyberRelevance: {
		genaiSchema: cyberRelevanceGenAISchema,
		jsonSchema:  cyberRelevanceJSONSchema,
		decode:      decodeInto[*CyberRelevanceAnswer],
	},
	KindCyberResponsibility: {
		genaiSchema: cyberResponsibilityGenAISchema,
		jsonSchema:  cyberResponsibilityJSONSchema,
		decode:      decodeInto[*CyberResponsibilityAnswer],
	},
	KindCyberOrigin: {
		genaiSchema: cyberOriginGenAISchema,
		jsonSchema:  cyberOriginJSONSchema,
		decode:      decodeInto[*CyberOriginAnswer],
	},
}

func decodeInto[T Value](raw []byte) (Value, error) {
	var v T
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// Known reports whether the kind is part of the closed set.
func Known(kind Kind) bool {
	_, ok := registry[kind]
	return ok
}

// GenAISchema returns the Gemini structured-output schema for the kind.
func GenAISchema(kind Kind) (*genai.Schema, error) {
	def, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("unknown schema kind %q", kind)
	}
	return def.genaiSchema, nil
}

// Decode validates raw JSON against the kind's schema and decodes it into
// the concrete answer shape. A validation failure lists every violation.
func Decode(kind Kind, raw []byte) (Value, error) {
	def, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("unknown schema kind %q", kind)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(def.jsonSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("schema validation for %q: %w", kind, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return nil, fmt.Errorf("answer does not conform to %q schema: %s", kind, strings.Join(msgs, "; "))
	}

	v, err := def.decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %q answer: %w", kind, err)
	}
	return v, nil
}

// Shared enumerations. The NONE level doubles as "not applicable".

var confidenceLevels = []string{"HIGH", "MEDIUM", "LOW", "NONE"}
