package schema

import (
	"google.golang.org/genai"

	"robora/internal/question"
)

// OrganizationAnswer identifies the top-level state organ responsible for a
// domain in a country. The answering backend returns "NONE" as the
// organization name when no such organ exists.
type OrganizationAnswer struct {
	OrganizationName string `json:"organization_name"`
	Confidence       string `json:"confidence"`
}

func (*OrganizationAnswer) Kind() Kind { return KindOrganization }

func (a *OrganizationAnswer) Flatten() []Field {
	return []Field{
		{Name: "organization_name", Value: a.OrganizationName},
		{Name: "confidence", Value: a.Confidence},
	}
}

const organizationTemplate = "What is the top-level state Organ (i.e., ministry/department/agency) responsible for {domain} in {country}?"

// OrganizationSet builds the stage-1 question set: domain × country cross
// product, one question per combination. Values are uppercased so
// fingerprints stay stable across reference-data casing.
func OrganizationSet(domains, countries []string) question.Set {
	return question.NewSet(organizationTemplate, string(KindOrganization),
		question.Axis{Name: "domain", Values: question.Upper(domains)},
		question.Axis{Name: "country", Values: question.Upper(countries)},
	)
}

var organizationGenAISchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"organization_name": {
			Type:        genai.TypeString,
			Description: "Name of the top-level state Organ (i.e., ministry/department/agency). If no such Organ exists, return 'NONE'.",
		},
		"confidence": {
			Type:        genai.TypeString,
			Enum:        confidenceLevels,
			Description: "Confidence level of your assessment.",
		},
	},
	Required: []string{"organization_name", "confidence"},
}

const organizationJSONSchema = `{
	"type": "object",
	"properties": {
		"organization_name": {"type": "string"},
		"confidence": {"type": "string", "enum": ["HIGH", "MEDIUM", "LOW", "NONE"]}
	},
	"required": ["organization_name", "confidence"],
	"additionalProperties": false
}`
