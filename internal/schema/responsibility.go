package schema

import (
	"google.golang.org/genai"

	"robora/internal/question"
)

// CyberResponsibilityAnswer records when and how a ministry/department
// became responsible for cybersecurity.
type CyberResponsibilityAnswer struct {
	OrganIncarnationName string `json:"organ_incarnation_name,omitempty"`
	ResponsibleDate      string `json:"responsible_date,omitempty"`
	ResponsibilityLevel  string `json:"responsibility_level"`
	Explanation          string `json:"explanation,omitempty"`
	Confidence           string `json:"confidence"`
}

func (*CyberResponsibilityAnswer) Kind() Kind { return KindCyberResponsibility }

func (a *CyberResponsibilityAnswer) Flatten() []Field {
	return []Field{
		{Name: "organ_incarnation_name", Value: a.OrganIncarnationName},
		{Name: "responsible_date", Value: a.ResponsibleDate},
		{Name: "responsibility_level", Value: a.ResponsibilityLevel},
		{Name: "explanation", Value: a.Explanation},
		{Name: "confidence", Value: a.Confidence},
	}
}

const cyberResponsibilityTemplate = "Assess the {domain} ministry/department of {country} as a cybersecurity stakeholder. " +
	"If it is responsible for or involved in cybersecurity, provide: " +
	"(1) the name of the specific organ/entity incarnation that became responsible, " +
	"(2) when it became responsible, " +
	"(3) the level of responsibility (none, low, medium, high), " +
	"(4) explanation with evidence."

// CyberResponsibilitySet builds a domain × country responsibility
// assessment set.
func CyberResponsibilitySet(domains, countries []string) question.Set {
	return question.NewSet(cyberResponsibilityTemplate, string(KindCyberResponsibility),
		question.Axis{Name: "domain", Values: domains},
		question.Axis{Name: "country", Values: countries},
	)
}

var cyberResponsibilityGenAISchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"organ_incarnation_name": {
			Type:        genai.TypeString,
			Description: "Name of the specific organization/entity/incarnation of the ministry/department that became responsible for cybersecurity. If not applicable, return the current incarnation with responsibility_level NONE.",
		},
		"responsible_date": {
			Type:        genai.TypeString,
			Description: "Date (year or full date) when the organ incarnation became responsible for or involved in cybersecurity. If not applicable, return null.",
		},
		"responsibility_level": {
			Type:        genai.TypeString,
			Enum:        []string{"HIGH", "MEDIUM", "LOW", "NONE"},
			Description: "Level of cybersecurity responsibility",
		},
		"explanation": {
			Type:        genai.TypeString,
			Description: "Explanation for the assessment including evidence and citation references after each claim.",
		},
		"confidence": {
			Type:        genai.TypeString,
			Enum:        confidenceLevels,
			Description: "Confidence level of this assessment",
		},
	},
	Required: []string{"responsibility_level", "confidence"},
}

const cyberResponsibilityJSONSchema = `{
	"type": "object",
	"properties": {
		"organ_incarnation_name": {"type": "string"},
		"responsible_date": {"type": "string"},
		"responsibility_level": {"type": "string", "enum": ["HIGH", "MEDIUM", "LOW", "NONE"]},
		"explanation": {"type": "string"},
		"confidence": {"type": "string", "enum": ["HIGH", "MEDIUM", "LOW", "NONE"]}
	},
	"required": ["responsibility_level", "confidence"],
	"additionalProperties": false
}`
