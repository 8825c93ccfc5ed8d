// pkg/locator/reference.go
package locator

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/David-Botos/contact-chronicle/pkg/model"
)

//go:embed cities.yaml
var referenceYAML []byte

type ruleSpec struct {
	Name     string   `yaml:"name"`
	City     string   `yaml:"city"`
	Keywords []string `yaml:"keywords"`
}

type referenceData struct {
	Cities []model.City `yaml:"cities"`
	Rules  []ruleSpec   `yaml:"rules"`
}

var (
	defaultCities []model.City
	defaultRules  []Rule
)

func init() {
	cities, rules, err := parseReference(referenceYAML)
	if err != nil {
		panic(fmt.Sprintf("locator: invalid embedded reference data: %v", err))
	}
	defaultCities = cities
	defaultRules = rules
}

// parseReference decodes the city table and resolves each rule's city by name
func parseReference(data []byte) ([]model.City, []Rule, error) {
	var ref referenceData
	if err := yaml.Unmarshal(data, &ref); err != nil {
		return nil, nil, err
	}
	if len(ref.Cities) == 0 {
		return nil, nil, fmt.Errorf("city table is empty")
	}

	byName := make(map[string]model.City, len(ref.Cities))
	for _, c := range ref.Cities {
		byName[c.Name] = c
	}

	rules := make([]Rule, 0, len(ref.Rules))
	for _, spec := range ref.Rules {
		city, ok := byName[spec.City]
		if !ok {
			return nil, nil, fmt.Errorf("rule %s: unknown city %q", spec.Name, spec.City)
		}
		keywords := make([]string, 0, len(spec.Keywords))
		for _, k := range spec.Keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				keywords = append(keywords, k)
			}
		}
		rules = append(rules, Rule{Name: spec.Name, Keywords: keywords, City: city})
	}
	return ref.Cities, rules, nil
}

// DefaultCities returns a copy of the built-in reference city table
func DefaultCities() []model.City {
	out := make([]model.City, len(defaultCities))
	copy(out, defaultCities)
	return out
}

// DefaultRules returns a copy of the built-in keyword rules, in evaluation order
func DefaultRules() []Rule {
	out := make([]Rule, len(defaultRules))
	for i, r := range defaultRules {
		r.Keywords = append([]string(nil), r.Keywords...)
		out[i] = r
	}
	return out
}
