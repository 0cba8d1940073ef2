package schema

import (
	"google.golang.org/genai"

	"robora/internal/question"
)

// CyberOriginAnswer records the earliest date a ministry/department is known
// to have been a direct cybersecurity stakeholder.
type CyberOriginAnswer struct {
	EarliestDate       string `json:"earliest_date,omitempty"`
	EarliestDateEntity string `json:"earliest_date_entity,omitempty"`
	Confidence         string `json:"confidence"`
	Explanation        string `json:"explanation,omitempty"`
}

func (*CyberOriginAnswer) Kind() Kind { return KindCyberOrigin }

func (a *CyberOriginAnswer) Flatten() []Field {
	return []Field{
		{Name: "earliest_date", Value: a.EarliestDate},
		{Name: "earliest_date_entity", Value: a.EarliestDateEntity},
		{Name: "confidence", Value: a.Confidence},
		{Name: "explanation", Value: a.Explanation},
	}
}

const cyberOriginTemplate = "If the {domain} ministry/department of {country} is a direct stakeholder in cybersecurity, " +
	"when did {domain} ministry/department of {country} " +
	"become responsible for or involved in cybersecurity? " +
	"Provide the earliest known date and name of the entity at this time."

// CyberOriginSet builds a domain × country earliest-involvement set.
func CyberOriginSet(domains, countries []string) question.Set {
	return question.NewSet(cyberOriginTemplate, string(KindCyberOrigin),
		question.Axis{Name: "domain", Values: domains},
		question.Axis{Name: "country", Values: countries},
	)
}

var cyberOriginGenAISchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"earliest_date": {
			Type:        genai.TypeString,
			Description: "Earliest date (year or full date) when the ministry/department is known to have been a direct stakeholder in cybersecurity. If not applicable, return null.",
		},
		"earliest_date_entity": {
			Type:        genai.TypeString,
			Description: "The named entity (organization, person, event) associated with the earliest date when the ministry/department became direct stakeholder in cybersecurity. If not applicable, return null.",
		},
		"confidence": {
			Type:        genai.TypeString,
			Enum:        confidenceLevels,
			Description: "Confidence level of the date provided",
		},
		"explanation": {
			Type:        genai.TypeString,
			Description: "Explanation for the date with citation references after each claim.",
		},
	},
	Required: []string{"confidence"},
}

const cyberOriginJSONSchema = `{
	"type": "object",
	"properties": {
		"earliest_date": {"type": "string"},
		"earliest_date_entity": {"type": "string"},
		"confidence": {"type": "string", "enum": ["HIGH", "MEDIUM", "LOW", "NONE"]},
		"explanation": {"type": "string"}
	},
	"required": ["confidence"],
	"additionalProperties": false
}`
