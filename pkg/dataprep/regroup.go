package dataprep

import (
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/marcello10/DecisionTree-Adult-Income/pkg/data"
)

// Category labels produced by the census regrouping rules.
const (
	Government    = "Government"
	Self          = "Self"
	Others        = "Others"
	SchoolDropout = "School-Dropout"
	College       = "College"
	Masters       = "Masters"
	Married       = "Married"
	Separated     = "Separated"
	BlueCollar    = "Blue-collar"
	WhiteCollar   = "White-collar"
	GoldCollar    = "Gold-collar"
	PinkCollar    = "Pink-collar"
	GreenCollar   = "Green-collar"
	BrownCollar   = "Brown-collar"
	US            = "US"
	OtherCountry  = "Other"
)

// ColumnRule collapses the raw values of one column.
type ColumnRule struct {
	// Mapping sends a raw value to its group.
	Mapping map[string]string
	// Keep lists raw values that are already a group of their own.
	Keep []string
	// Default, when set, replaces every value that is neither mapped nor a
	// known group.
	Default string
}

// RegroupRules maps a column name to its rule.
type RegroupRules map[string]ColumnRule

// RegroupReport records values that no rule covered, per column.
type RegroupReport struct {
	Unmapped map[string]map[string]int
	Skipped  []string
}

// Empty reports whether every value was covered.
func (r RegroupReport) Empty() bool { return len(r.Unmapped) == 0 }

// group builds a mapping that sends every raw value to label.
func group(m map[string]string, label string, raw ...string) {
	for _, v := range raw {
		m[v] = label
	}
}

// CensusRules returns the category-collapse rules of the census pipeline.
func CensusRules() RegroupRules {
	workclass := map[string]string{}
	group(workclass, Government, "State-gov", "Federal-gov", "Local-gov")
	group(workclass, Self, "Self-emp-not-inc", "Self-emp-inc")
	group(workclass, Others, "Without-pay", "Never-worked")

	education := map[string]string{}
	group(education, SchoolDropout, "11th", "9th", "7th-8th", "5th-6th", "10th", "1st-4th", "Preschool", "12th")
	group(education, College, "Some-college", "Assoc-acdm", "Assoc-voc")
	group(education, Masters, "Prof-school")

	marital := map[string]string{}
	group(marital, Married, "Married-AF-spouse", "Married-civ-spouse", "Married-spouse-absent")
	group(marital, Separated, "Divorced")

	occupation := map[string]string{}
	group(occupation, BlueCollar, "Tech-support", "Craft-repair", "Handlers-cleaners", "Transport-moving", "Machine-op-inspct")
	group(occupation, WhiteCollar, "Exec-managerial", "Adm-clerical")
	group(occupation, GoldCollar, "Prof-specialty")
	group(occupation, PinkCollar, "Other-service", "Sales", "Priv-house-serv", "Protective-serv")
	group(occupation, GreenCollar, "Farming-fishing")
	group(occupation, BrownCollar, "Armed-Forces")

	return RegroupRules{
		data.Workclass:     {Mapping: workclass, Keep: []string{"Private"}},
		data.Education:     {Mapping: education, Keep: []string{"Bachelors", "HS-grad", "Doctorate"}},
		data.MaritalStatus: {Mapping: marital, Keep: []string{"Never-married", "Widowed"}},
		data.Occupation:    {Mapping: occupation},
		data.NativeCountry: {Mapping: map[string]string{"United-States": US}, Default: OtherCountry},
	}
}

// Groups returns the set of values the rule can produce, sorted.
func (r ColumnRule) Groups() []string {
	set := r.groupSet()
	out := make([]string, 0, len(set))
	for g := range set {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

func (r ColumnRule) groupSet() map[string]struct{} {
	set := map[string]struct{}{}
	for _, g := range r.Mapping {
		set[g] = struct{}{}
	}
	for _, k := range r.Keep {
		set[k] = struct{}{}
	}
	if r.Default != "" {
		set[r.Default] = struct{}{}
	}
	return set
}

// Apply maps one value. The second result is false when nothing covered it
// and the value was passed through.
func (r ColumnRule) Apply(v string) (string, bool) {
	return r.compile().apply(v)
}

// compiledRule caches the group set so a column is mapped without
// rebuilding it per cell.
type compiledRule struct {
	ColumnRule
	groups map[string]struct{}
}

func (r ColumnRule) compile() compiledRule {
	return compiledRule{ColumnRule: r, groups: r.groupSet()}
}

func (c compiledRule) apply(v string) (string, bool) {
	if g, ok := c.Mapping[v]; ok {
		return g, true
	}
	if _, ok := c.groups[v]; ok {
		return v, true
	}
	if c.Default != "" {
		return c.Default, true
	}
	return v, false
}

// Regroup returns a copy of df with every ruled column collapsed. Missing
// cells are left missing. Rules for columns df does not have are skipped.
func Regroup(df dataframe.DataFrame, rules RegroupRules) (dataframe.DataFrame, RegroupReport, error) {
	report := RegroupReport{Unmapped: map[string]map[string]int{}}
	if df.Err != nil {
		return dataframe.DataFrame{}, report, df.Err
	}

	cols := make([]string, 0, len(rules))
	for col := range rules {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	out := df.Copy()
	for _, col := range cols {
		if indexOf(out.Names(), col) < 0 {
			report.Skipped = append(report.Skipped, col)
			continue
		}
		rule := rules[col].compile()
		src := out.Col(col)
		nan := src.IsNaN()
		values := src.Records()
		for i, v := range values {
			if nan[i] {
				continue
			}
			g, ok := rule.apply(v)
			if !ok {
				if report.Unmapped[col] == nil {
					report.Unmapped[col] = map[string]int{}
				}
				report.Unmapped[col][v]++
			}
			values[i] = g
		}
		// NaN cells still read "NaN", which series.New maps back to missing
		out = out.Mutate(series.New(values, series.String, col))
		if out.Err != nil {
			return dataframe.DataFrame{}, report, out.Err
		}
	}
	return out, report, nil
}
