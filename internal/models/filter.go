package models

// FilterKind names one group of filters on the resume listing page.
type FilterKind string

const (
	FilterSearchParams FilterKind = "search_params"
	FilterEmployment   FilterKind = "employment"
	FilterAge          FilterKind = "age"
	FilterGender       FilterKind = "gender"
	FilterSalary       FilterKind = "salary"
	FilterEducation    FilterKind = "education"
	FilterExperience   FilterKind = "experience"
)

// Checkbox-style filter values. Values outside these sets are accepted
// by FilterSpec and ignored when the filters are applied.
const (
	SearchTitleOnly    = "title_only"
	SearchWithSynonyms = "with_synonyms"
	SearchAnyWord      = "any_word"

	EmploymentFullTime = "full_time"
	EmploymentPartTime = "part_time"

	GenderMale   = "male"
	GenderFemale = "female"

	EducationHigher               = "higher"
	EducationUnfinishedHigher     = "unfinished_higher"
	EducationSpecializedSecondary = "specialized_secondary"
	EducationSecondary            = "secondary"

	ExperienceNone      = "no_experience"
	ExperienceUpTo1     = "up_to_1"
	Experience1To2      = "1_to_2"
	Experience2To5      = "2_to_5"
	ExperienceMoreThan5 = "more_than_5"
)

// AgeRange holds the optional age bounds. A nil bound is not applied.
type AgeRange struct {
	From *int `json:"from,omitempty"`
	To   *int `json:"to,omitempty"`
}

// SalaryRange holds the optional salary bounds. Bounds are amounts, not
// site bracket ids; the scraper translates them.
type SalaryRange struct {
	From         *int `json:"from,omitempty"`
	To           *int `json:"to,omitempty"`
	NotSpecified bool `json:"not_specified,omitempty"`
}

// FilterSpec is the set of filters collected during one conversation.
// Every field is optional and an empty field means no filter of that kind.
type FilterSpec struct {
	SearchParams []string     `json:"search_params,omitempty"`
	Employment   []string     `json:"employment,omitempty"`
	Age          *AgeRange    `json:"age,omitempty"`
	Gender       []string     `json:"gender,omitempty"`
	Salary       *SalaryRange `json:"salary,omitempty"`
	Education    []string     `json:"education,omitempty"`
	Experience   []string     `json:"experience,omitempty"`
}

// IsEmpty reports whether no filter at all is set.
func (f FilterSpec) IsEmpty() bool {
	return len(f.SearchParams) == 0 &&
		len(f.Employment) == 0 &&
		(f.Age == nil || (f.Age.From == nil && f.Age.To == nil)) &&
		len(f.Gender) == 0 &&
		(f.Salary == nil || (f.Salary.From == nil && f.Salary.To == nil && !f.Salary.NotSpecified)) &&
		len(f.Education) == 0 &&
		len(f.Experience) == 0
}

// AddValue appends value to the checkbox group of kind unless it is
// already present. Range kinds are not handled here.
func (f *FilterSpec) AddValue(kind FilterKind, value string) {
	var dst *[]string
	switch kind {
	case FilterSearchParams:
		dst = &f.SearchParams
	case FilterEmployment:
		dst = &f.Employment
	case FilterGender:
		dst = &f.Gender
	case FilterEducation:
		dst = &f.Education
	case FilterExperience:
		dst = &f.Experience
	default:
		return
	}
	for _, v := range *dst {
		if v == value {
			return
		}
	}
	*dst = append(*dst, value)
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
