// Package categorize maps free-text transaction descriptions to a category
// using ordered keyword groups.
//
// Groups are tried in order and the first one with a matching keyword wins,
// so a description mentioning both "coffee" and "shop" lands in food.
// Matching is case-insensitive and substring based: "store" also matches
// "Random Store XYZ".
package categorize

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"budgetwise/internal/core"
)

// Group is one category and the keywords that select it.
type Group struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// Rules is a compiled, ordered keyword table. The zero value categorizes
// everything as Fallback.
type Rules struct {
	groups   []compiledGroup
	fallback string
}

type compiledGroup struct {
	category string
	pattern  *regexp.Regexp
}

type rulesFile struct {
	Fallback string  `yaml:"fallback"`
	Groups   []Group `yaml:"groups"`
}

// DefaultGroups is the canonical keyword table shared by CSV import and any
// other caller that needs a category for a description.
var DefaultGroups = []Group{
	{Category: core.CategoryFood, Keywords: []string{"restaurant", "cafe", "coffee", "food", "dining", "starbucks", "mcdonald"}},
	{Category: core.CategoryTransport, Keywords: []string{"gas", "fuel", "uber", "lyft", "taxi", "parking"}},
	{Category: core.CategoryShopping, Keywords: []string{"amazon", "walmart", "target", "store", "shop"}},
	{Category: core.CategoryBills, Keywords: []string{"electric", "water", "internet", "phone", "utility", "bill"}},
	{Category: core.CategoryEntertainment, Keywords: []string{"netflix", "spotify", "movie", "entertainment"}},
	{Category: core.CategoryHealth, Keywords: []string{"pharmacy", "doctor", "hospital", "medical", "health"}},
}

var defaultRules = MustCompile(DefaultGroups, core.CategoryOther)

// Auto returns the category for description using the default table.
func Auto(description string) string {
	return defaultRules.Categorize(description)
}

// Default returns the compiled default table.
func Default() *Rules {
	return defaultRules
}

// Compile builds Rules from groups. Empty groups are rejected; keywords are
// matched literally.
func Compile(groups []Group, fallback string) (*Rules, error) {
	if strings.TrimSpace(fallback) == "" {
		fallback = core.CategoryOther
	}
	r := &Rules{fallback: fallback}
	for i, g := range groups {
		category := strings.TrimSpace(g.Category)
		if category == "" {
			return nil, fmt.Errorf("group %d: empty category", i)
		}
		var alts []string
		for _, k := range g.Keywords {
			if k = strings.TrimSpace(k); k != "" {
				alts = append(alts, regexp.QuoteMeta(k))
			}
		}
		if len(alts) == 0 {
			return nil, fmt.Errorf("group %d (%s): no keywords", i, category)
		}
		pattern, err := regexp.Compile(`(?i)` + strings.Join(alts, "|"))
		if err != nil {
			return nil, fmt.Errorf("group %d (%s): %w", i, category, err)
		}
		r.groups = append(r.groups, compiledGroup{category: category, pattern: pattern})
	}
	return r, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(groups []Group, fallback string) *Rules {
	r, err := Compile(groups, fallback)
	if err != nil {
		panic(err)
	}
	return r
}

// Load reads a YAML rules file:
//
//	fallback: other
//	groups:
//	  - category: food
//	    keywords: [restaurant, cafe]
func Load(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	if len(f.Groups) == 0 {
		return nil, errors.New("rules file has no groups")
	}
	return Compile(f.Groups, f.Fallback)
}

// LoadOrDefault loads path when set and falls back to the default table
// when path is empty.
func LoadOrDefault(path string) (*Rules, error) {
	if strings.TrimSpace(path) == "" {
		return defaultRules, nil
	}
	return Load(path)
}

// Categorize returns the first matching group's category, or the fallback.
func (r *Rules) Categorize(description string) string {
	if r == nil {
		return core.CategoryOther
	}
	for _, g := range r.groups {
		if g.pattern.MatchString(description) {
			return g.category
		}
	}
	if r.fallback == "" {
		return core.CategoryOther
	}
	return r.fallback
}

// Categories lists the categories in match order.
func (r *Rules) Categories() []string {
	out := make([]string, 0, len(r.groups))
	for _, g := range r.groups {
		out = append(out, g.category)
	}
	return out
}
