package core

import (
	"fmt"
	"strings"
)

// CategoryGroup is one top-level category with its ordered sub-categories.
type CategoryGroup struct {
	Name string   `json:"name"`
	Subs []string `json:"subCategories"`
}

// Taxonomy is the fixed two-level category table.
type Taxonomy struct {
	groups []CategoryGroup
	index  map[string]int
}

// DefaultCategory is used when a transaction has no category.
const DefaultCategory = "Other"

var defaultGroups = []CategoryGroup{
	{"Income", []string{"Salary", "Freelance", "Benefits", "Investment Returns", "Business Income", "Other Income"}},
	{"Housing", []string{"Rent", "Mortgage", "Utilities", "Internet", "Council Tax", "Insurance", "Maintenance"}},
	{"Food", []string{"Groceries", "Restaurants", "Takeaway", "Coffee", "Alcohol"}},
	{"Transport", []string{"Fuel", "Public Transport", "Car Insurance", "Parking", "Uber/Taxi", "Car Maintenance"}},
	{"Subscriptions", []string{"Streaming", "Software", "Gym", "Magazines", "Cloud Storage", "Gaming"}},
	{"Health", []string{"GP/Doctor", "Dentist", "Pharmacy", "Mental Health", "Optician"}},
	{"Shopping", []string{"Clothing", "Electronics", "Home & Garden", "Books", "Gifts"}},
	{"Entertainment", []string{"Cinema", "Events", "Holidays", "Hobbies", "Sports"}},
	{"Finance", []string{"Savings Transfer", "Investment", "Pension Contribution", "Loan Payment", "Credit Card Payment", "Interest"}},
	{"Business", []string{"Office Supplies", "Travel", "Software", "Marketing", "Professional Services", "Equipment", "Client Entertainment"}},
	{"Other", []string{"Cash Withdrawal", "Bank Charge", "Unknown"}},
}

// Categories is the built-in taxonomy.
var Categories = MustTaxonomy(defaultGroups)

// NewTaxonomy validates groups and builds a lookup table.
func NewTaxonomy(groups []CategoryGroup) (*Taxonomy, error) {
	t := &Taxonomy{index: make(map[string]int, len(groups))}
	for i, g := range groups {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			return nil, fmt.Errorf("category %d: %w", i, ErrEmptyName)
		}
		if _, dup := t.index[name]; dup {
			return nil, fmt.Errorf("duplicate category %q", name)
		}
		seen := make(map[string]struct{}, len(g.Subs))
		subs := make([]string, 0, len(g.Subs))
		for _, s := range g.Subs {
			s = strings.TrimSpace(s)
			if s == "" {
				return nil, fmt.Errorf("category %q: empty sub-category", name)
			}
			if _, dup := seen[s]; dup {
				return nil, fmt.Errorf("category %q: duplicate sub-category %q", name, s)
			}
			seen[s] = struct{}{}
			subs = append(subs, s)
		}
		t.index[name] = len(t.groups)
		t.groups = append(t.groups, CategoryGroup{Name: name, Subs: subs})
	}
	return t, nil
}

// MustTaxonomy is NewTaxonomy that panics on invalid input.
func MustTaxonomy(groups []CategoryGroup) *Taxonomy {
	t, err := NewTaxonomy(groups)
	if err != nil {
		panic(err)
	}
	return t
}

// Names returns the top-level categories in order.
func (t *Taxonomy) Names() []string {
	out := make([]string, len(t.groups))
	for i, g := range t.groups {
		out[i] = g.Name
	}
	return out
}

// Groups returns a copy of the full table.
func (t *Taxonomy) Groups() []CategoryGroup {
	out := make([]CategoryGroup, len(t.groups))
	for i, g := range t.groups {
		out[i] = CategoryGroup{Name: g.Name, Subs: append([]string(nil), g.Subs...)}
	}
	return out
}

// SubCategories returns the sub-categories of category, or nil when unknown.
func (t *Taxonomy) SubCategories(category string) []string {
	i, ok := t.index[category]
	if !ok {
		return nil
	}
	return append([]string(nil), t.groups[i].Subs...)
}

// Has reports whether sub is listed under category.
func (t *Taxonomy) Has(category, sub string) bool {
	for _, s := range t.SubCategories(category) {
		if s == sub {
			return true
		}
	}
	return false
}

// DefaultSub returns the first sub-category of category, or "" when none.
func (t *Taxonomy) DefaultSub(category string) string {
	subs := t.SubCategories(category)
	if len(subs) == 0 {
		return ""
	}
	return subs[0]
}

// Normalize keeps sub when it belongs to category and otherwise selects
// the category's first sub-category.
func (t *Taxonomy) Normalize(category, sub string) string {
	if t.Has(category, sub) {
		return sub
	}
	return t.DefaultSub(category)
}
