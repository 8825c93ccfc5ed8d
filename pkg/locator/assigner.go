// pkg/locator/assigner.go
package locator

import (
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/contact-chronicle/pkg/model"
)

// DefaultJitter is the maximum offset in degrees added to each coordinate
const DefaultJitter = 0.05

// Rule assigns City to records whose company or position contains any keyword
type Rule struct {
	Name     string
	Keywords []string // lower case
	City     model.City
}

// Matches reports whether the rule applies to the lower-cased text
func (r Rule) Matches(text string) bool {
	for _, k := range r.Keywords {
		if k != "" && strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// Method describes how a record's location was decided
type Method string

const (
	MethodUnchanged Method = "unchanged" // record already had a location
	MethodKeyword   Method = "keyword"   // a rule matched
	MethodDefault   Method = "default"   // round-robin over the city table
)

// Outcome is the result of assigning one record
type Outcome struct {
	Method  Method
	City    model.City
	Rule    string   // winning rule, empty unless Method is MethodKeyword
	Matched []string // every rule that matched, in declaration order
}

// Ambiguous reports whether more than one rule matched
func (o Outcome) Ambiguous() bool {
	return len(o.Matched) > 1
}

// Report summarizes an AssignAll run
type Report struct {
	Total     int `json:"total"`
	Unchanged int `json:"unchanged"`
	Keyword   int `json:"keyword"`
	Default   int `json:"default"`
	Ambiguous int `json:"ambiguous"`
}

// Assigner pseudo-geocodes connections onto the reference city table
type Assigner struct {
	logger *zap.Logger
	cities []model.City
	rules  []Rule
	jitter float64
	rng    *rand.Rand
}

// Option configures an Assigner
type Option func(*Assigner)

// WithJitter sets the maximum coordinate offset in degrees
func WithJitter(degrees float64) Option {
	return func(a *Assigner) {
		if degrees >= 0 {
			a.jitter = degrees
		}
	}
}

// WithSource sets the random source used for jitter
func WithSource(src rand.Source) Option {
	return func(a *Assigner) {
		if src != nil {
			a.rng = rand.New(src)
		}
	}
}

// WithCities replaces the reference city table. Empty tables are ignored.
func WithCities(cities []model.City) Option {
	return func(a *Assigner) {
		if len(cities) > 0 {
			a.cities = append([]model.City(nil), cities...)
		}
	}
}

// WithRules replaces the keyword rules
func WithRules(rules []Rule) Option {
	return func(a *Assigner) {
		a.rules = append([]Rule(nil), rules...)
	}
}

// NewAssigner creates an Assigner over the built-in reference data
func NewAssigner(logger *zap.Logger, opts ...Option) *Assigner {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Assigner{
		logger: logger.Named("locator"),
		cities: DefaultCities(),
		rules:  DefaultRules(),
		jitter: DefaultJitter,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Cities returns the reference table in use
func (a *Assigner) Cities() []model.City {
	return append([]model.City(nil), a.cities...)
}

// Match evaluates the rules in declaration order. It returns the first
// matching rule and the names of every rule that matched.
func (a *Assigner) Match(company, position string) (Rule, []string, bool) {
	text := strings.ToLower(company + "\n" + position)
	var (
		winner  Rule
		found   bool
		matched []string
	)
	for _, r := range a.rules {
		if !r.Matches(text) {
			continue
		}
		if !found {
			winner, found = r, true
		}
		matched = append(matched, r.Name)
	}
	return winner, matched, found
}

// Assign fills in missing location data for the record at ordinal index.
// Existing location, latitude and longitude values are never overwritten.
func (a *Assigner) Assign(c *model.Connection, index int) Outcome {
	if c.HasLocation() {
		return Outcome{Method: MethodUnchanged}
	}

	company, position := c.Value(model.FieldCompany), c.Value(model.FieldPosition)
	outcome := Outcome{Method: MethodDefault, City: a.defaultCity(index)}
	if rule, matched, ok := a.Match(company, position); ok {
		outcome = Outcome{Method: MethodKeyword, City: rule.City, Rule: rule.Name, Matched: matched}
		if outcome.Ambiguous() {
			a.logger.Warn("Multiple location rules match; using the first",
				zap.String("connection", c.FullName()),
				zap.String("company", company),
				zap.String("position", position),
				zap.Strings("rules", matched),
				zap.String("winner", rule.Name))
		}
	}

	if c.Location == nil {
		name := outcome.City.Name
		c.Location = &name
	}
	if c.Latitude == nil {
		lat := outcome.City.Latitude + a.offset()
		c.Latitude = &lat
	}
	if c.Longitude == nil {
		lng := outcome.City.Longitude + a.offset()
		c.Longitude = &lng
	}
	return outcome
}

// AssignAll assigns every record in place, using its position as the index
func (a *Assigner) AssignAll(records []model.Connection) Report {
	report := Report{Total: len(records)}
	for i := range records {
		outcome := a.Assign(&records[i], i)
		switch outcome.Method {
		case MethodUnchanged:
			report.Unchanged++
		case MethodKeyword:
			report.Keyword++
		case MethodDefault:
			report.Default++
		}
		if outcome.Ambiguous() {
			report.Ambiguous++
		}
	}

	a.logger.Debug("Assigned locations",
		zap.Int("total", report.Total),
		zap.Int("unchanged", report.Unchanged),
		zap.Int("keyword", report.Keyword),
		zap.Int("default", report.Default),
		zap.Int("ambiguous", report.Ambiguous))
	return report
}

func (a *Assigner) defaultCity(index int) model.City {
	n := len(a.cities)
	i := index % n
	if i < 0 {
		i += n
	}
	return a.cities[i]
}

// offset returns a uniform value in [-jitter, +jitter]
func (a *Assigner) offset() float64 {
	if a.jitter == 0 {
		return 0
	}
	return (a.rng.Float64()*2 - 1) * a.jitter
}
