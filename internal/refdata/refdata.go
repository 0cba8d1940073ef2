// Package refdata ships the static reference vocabularies consumed at
// pipeline start: the ministry-type domain list and the country list. Both
// are embedded, loaded once, and treated as immutable configuration passed
// explicitly into question-set construction.
package refdata

import (
	_ "embed"
	"fmt"
	"strings"
)

//go:embed countries.csv
var countriesCSV string

//go:embed domains.csv
var domainsCSV string

// Countries returns the country vocabulary.
func Countries() ([]string, error) {
	return parseList(countriesCSV, "countries")
}

// Domains returns the ministry-type vocabulary.
func Domains() ([]string, error) {
	return parseList(domainsCSV, "domains")
}

// Contains reports whether value is in the list (case-insensitive).
func Contains(list []string, value string) bool {
	for _, v := range list {
		if strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}

func parseList(raw, name string) ([]string, error) {
	var values []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		values = append(values, line)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("reference list %q is empty", name)
	}
	return values, nil
}
