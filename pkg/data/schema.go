package data

// Column names of the census income dataset, in file order.
const (
	Age           = "age"
	Workclass     = "workclass"
	Fnlwgt        = "fnlwgt"
	Education     = "education"
	EducationNum  = "education-num"
	MaritalStatus = "marital-status"
	Occupation    = "occupation"
	Relationship  = "relationship"
	Race          = "race"
	Sex           = "sex"
	CapitalGain   = "capital-gain"
	CapitalLoss   = "capital-loss"
	HoursPerWeek  = "hours-per-week"
	NativeCountry = "native-country"
	Income        = "income"
)

// Label values after normalisation.
const (
	LowIncome  = "<=50K"
	HighIncome = ">50K"
)

// MissingToken marks an unanswered field in the raw files.
const MissingToken = "?"

// Kind tells whether a column holds integers or category labels.
type Kind string

const (
	Numeric     Kind = "int"
	Categorical Kind = "category"
)

// Schema describes the structure of a dataset.
type Schema struct {
	FeatureNames []string
	Types        []Kind
	Label        string
}

// CensusSchema returns the fixed 15-column layout of the adult files.
func CensusSchema() Schema {
	return Schema{
		FeatureNames: []string{
			Age, Workclass, Fnlwgt, Education, EducationNum, MaritalStatus,
			Occupation, Relationship, Race, Sex, CapitalGain, CapitalLoss,
			HoursPerWeek, NativeCountry, Income,
		},
		Types: []Kind{
			Numeric, Categorical, Numeric, Categorical, Numeric, Categorical,
			Categorical, Categorical, Categorical, Categorical, Numeric, Numeric,
			Numeric, Categorical, Categorical,
		},
		Label: Income,
	}
}

// Names returns a copy of the column names.
func (s Schema) Names() []string {
	return append([]string(nil), s.FeatureNames...)
}

// Len is the number of columns, label included.
func (s Schema) Len() int { return len(s.FeatureNames) }

// Index returns the position of name, or -1.
func (s Schema) Index(name string) int {
	for i, n := range s.FeatureNames {
		if n == name {
			return i
		}
	}
	return -1
}

// IsNumeric reports whether name is an integer column.
func (s Schema) IsNumeric(name string) bool {
	i := s.Index(name)
	return i >= 0 && s.Types[i] == Numeric
}
