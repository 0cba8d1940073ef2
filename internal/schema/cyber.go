package schema

import (
	"google.golang.org/genai"

	"robora/internal/question"
)

// OrganizationCyberAnswer assesses how an organization is responsible for
// its country's cybersecurity governance, prevention, planning, response or
// enforcement.
type OrganizationCyberAnswer struct {
	Organization        string `json:"organization"`
	Country             string `json:"country"`
	ResponsibilityLevel string `json:"responsibility_level"`
	Explanation         string `json:"explanation,omitempty"`
	Confidence          string `json:"confidence"`
}

func (*OrganizationCyberAnswer) Kind() Kind { return KindOrganizationCyber }

func (a *OrganizationCyberAnswer) Flatten() []Field {
	return []Field{
		{Name: "organization", Value: a.Organization},
		{Name: "country", Value: a.Country},
		{Name: "responsibility_level", Value: a.ResponsibilityLevel},
		{Name: "explanation", Value: a.Explanation},
		{Name: "confidence", Value: a.Confidence},
	}
}

const organizationCyberTemplate = `Is the {organization} in {country} responsible for cybersecurity?

A ministry handles cybersecurity if it: Is explicitly mentioned in a national strategy/law/report as being responsible for cybersecurity policy, implementation, or technical coordination; Hosts a national CERT/CSIRT/CIRT; Leads or is a member of a cybersecurity committee, council, or working group; Oversees information security standards, network protection, or the like; Attends or participates in events, workshops, or press releases; or works with other countries or organizations on joint initiatives.`

// OrganizationCyberSet builds the stage-2 question set from pre-paired
// organization/country lists. The pairing is positional: one question per
// pair, never a cross product.
func OrganizationCyberSet(organizations, countries []string) question.Set {
	return question.NewZippedSet(organizationCyberTemplate, string(KindOrganizationCyber),
		question.Axis{Name: "organization", Values: organizations},
		question.Axis{Name: "country", Values: countries},
	)
}

var organizationCyberGenAISchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"organization": {
			Type:        genai.TypeString,
			Description: "Name of the given top-level state Organ (i.e., ministry/department/agency).",
		},
		"country": {
			Type:        genai.TypeString,
			Description: "Country that the organization belongs to.",
		},
		"responsibility_level": {
			Type:        genai.TypeString,
			Enum:        []string{"HIGH", "LOW", "NONE"},
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
	Required: []string{"organization", "country", "responsibility_level", "confidence"},
}

const organizationCyberJSONSchema = `{
	"type": "object",
	"properties": {
		"organization": {"type": "string"},
		"country": {"type": "string"},
		"responsibility_level": {"type": "string", "enum": ["HIGH", "LOW", "NONE"]},
		"explanation": {"type": "string"},
		"confidence": {"type": "string", "enum": ["HIGH", "MEDIUM", "LOW", "NONE"]}
	},
	"required": ["organization", "country", "responsibility_level", "confidence"],
	"additionalProperties": false
}`
