package prompt

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

//go:embed countries.json
var countriesJSON []byte

// Country is an ISO 3166-1 country.
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// LoadCountries returns the embedded country list sorted by name.
func LoadCountries() ([]Country, error) {
	var countries []Country
	if err := json.Unmarshal(countriesJSON, &countries); err != nil {
		return nil, fmt.Errorf("failed to parse country list: %w", err)
	}
	sort.Slice(countries, func(i, j int) bool {
		return countries[i].Name < countries[j].Name
	})
	return countries, nil
}

// FindCountry looks a country up by code or by name, ignoring case.
func FindCountry(countries []Country, query string) (Country, bool) {
	q := strings.TrimSpace(query)
	for _, c := range countries {
		if strings.EqualFold(c.Code, q) || strings.EqualFold(c.Name, q) {
			return c, true
		}
	}
	return Country{}, false
}
