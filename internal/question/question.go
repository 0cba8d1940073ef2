// Package question defines the parametric question model: a template with
// named placeholders, the substitution axes that expand it into concrete
// questions, and the fingerprinting used to deduplicate answers in storage.
package question

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// placeholderPattern matches {name} placeholders inside a template.
var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// Question is one concrete, fully bound question. Immutable once constructed;
// identity is the (template, bindings) pair, not the time of generation.
type Question struct {
	Template string            `json:"template"`
	Bindings map[string]string `json:"bindings"`
	Schema   string            `json:"schema"`
}

// Fingerprint returns the stable identity of the question, used as the
// storage key. Two questions with the same template and bindings always
// produce the same fingerprint regardless of binding map iteration order.
func (q Question) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(q.Template))
	h.Write([]byte{0})

	keys := make([]string, 0, len(q.Bindings))
	for k := range q.Bindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write([]byte(q.Bindings[k]))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Render substitutes every placeholder in the template with its bound value.
func (q Question) Render() string {
	return placeholderPattern.ReplaceAllStringFunc(q.Template, func(m string) string {
		name := m[1 : len(m)-1]
		if v, ok := q.Bindings[name]; ok {
			return v
		}
		return m
	})
}

// Placeholders returns the distinct placeholder names referenced by a
// template, in order of first appearance.
func Placeholders(template string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Answer pairs a question with the structured value retrieved for it.
// Created exactly once per fingerprint and never mutated afterwards; an
// answer present in storage is authoritative and is never re-fetched.
type Answer struct {
	Question    Question  `json:"question"`
	Payload     []byte    `json:"payload"`
	Citations   []string  `json:"citations,omitempty"`
	RetrievedAt time.Time `json:"retrieved_at"`
}

// ConfigurationError reports a malformed question set or template binding.
// It is raised before any dispatch and is never retried.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("question configuration: %s", e.Reason)
}

func configErrorf(format string, args ...interface{}) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// IsConfigurationError reports whether err is a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// Upper trims and uppercases axis values. Question families that want
// casing-stable fingerprints apply it when constructing their sets.
func Upper(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToUpper(strings.TrimSpace(v))
	}
	return out
}
