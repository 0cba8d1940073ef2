package schema

import (
	"google.golang.org/genai"

	"robora/internal/question"
)

// CyberRelevanceAnswer assesses whether a ministry/department is a direct
// cybersecurity stakeholder at all.
type CyberRelevanceAnswer struct {
	RelevanceLevel string `json:"relevance_level"`
	Confidence     string `json:"confidence"`
	Explanation    string `json:"explanation,omitempty"`
}

func (*CyberRelevanceAnswer) Kind() Kind { return KindCyberRelevance }

func (a *CyberRelevanceAnswer) Flatten() []Field {
	return []Field{
		{Name: "relevance_level", Value: a.RelevanceLevel},
		{Name: "confidence", Value: a.Confidence},
		{Name: "explanation", Value: a.Explanation},
	}
}

const cyberRelevanceTemplate = "Is the department/ministry of {domain} in {country} a direct stakeholder (i.e., responsible for or involved) in the country's cybersecurity?"

// CyberRelevanceSet builds a domain × country relevance screen.
func CyberRelevanceSet(domains, countries []string) question.Set {
	return question.NewSet(cyberRelevanceTemplate, string(KindCyberRelevance),
		question.Axis{Name: "domain", Values: domains},
		question.Axis{Name: "country", Values: countries},
	)
}

var cyberRelevanceGenAISchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"relevance_level": {
			Type:        genai.TypeString,
			Enum:        []string{"HIGH", "MEDIUM", "LOW", "NONE"},
			Description: "Level of cybersecurity involvement",
		},
		"confidence": {
			Type:        genai.TypeString,
			Enum:        confidenceLevels,
			Description: "Confidence level of this assessment",
		},
		"explanation": {
			Type:        genai.TypeString,
			Description: "Explanation for the assessment with citation reference after each claim.",
		},
	},
	Required: []string{"relevance_level", "confidence"},
}

const cyberRelevanceJSONSchema = `{
	"type": "object",
	"properties": {
		"relevance_level": {"type": "string", "enum": ["HIGH", "MEDIUM", "LOW", "NONE"]},
		"confidence": {"type": "string", "enum": ["HIGH", "MEDIUM", "LOW", "NONE"]},
		"explanation": {"type": "string"}
	},
	"required": ["relevance_level", "confidence"],
	"additionalProperties": false
}`
