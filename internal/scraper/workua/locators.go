package workua

import "workua-resume-bot/internal/models"

// Element names a fixed element of the work.ua pages.
type Element int

const (
	CategoryLinks Element = iota
	ProfessionInput
	CityInput
	LoadingOverlay
	ResumeLinks
	ResumeUpdated
	ResumeTitle
	ResumeHeadline
)

// Bound selects the lower or upper dropdown of a range filter.
type Bound int

const (
	From Bound = iota
	To
)

// LocatorResolver maps page elements and filter values to selectors.
// It is the only place that knows the markup of the target site.
type LocatorResolver interface {
	Element(e Element) string
	Checkbox(kind models.FilterKind, value string) (string, bool)
	Dropdown(kind models.FilterKind, b Bound) (string, bool)
	// SalaryBracket translates an amount into the site's option value.
	SalaryBracket(amount int) (string, bool)
}

// NotSpecifiedSalary is the checkbox value used for salary.not_specified.
const NotSpecifiedSalary = "not_specified"

type siteLocators struct {
	elements   map[Element]string
	checkboxes map[models.FilterKind]map[string]string
	dropdowns  map[models.FilterKind][2]string
	brackets   map[int]string
}

// DefaultLocators returns the selectors matching the current work.ua markup.
// These are brittle site contracts: they break whenever the DOM changes.
func DefaultLocators() LocatorResolver {
	return &siteLocators{
		elements: map[Element]string{
			CategoryLinks:   "xpath=//li/a[starts-with(@href, '/resumes-')]",
			ProfessionInput: `xpath=//*[@id="search"]`,
			CityInput:       `xpath=//*[@id="city"]`,
			LoadingOverlay:  ".loading-overlay",
			ResumeLinks:     "xpath=//a[starts-with(@href, '/resumes/')]",
			ResumeUpdated:   "xpath=//time",
			ResumeTitle:     "xpath=//div[1]/div/div/h1[contains(@class, 'mt-0') and contains(@class, 'mb-0')]",
			ResumeHeadline:  "xpath=//div[1]/div/div/h2[1]",
		},
		checkboxes: map[models.FilterKind]map[string]string{
			models.FilterSearchParams: {
				models.SearchTitleOnly:    "xpath=//input[@id='f1-1']",
				models.SearchWithSynonyms: "xpath=//input[@id='f2-2']",
				models.SearchAnyWord:      "xpath=//input[@id='f3-3']",
			},
			models.FilterEmployment: {
				models.EmploymentFullTime: "xpath=//*[@id='employment_selection']/ul[1]/li/label/input",
				models.EmploymentPartTime: "xpath=//*[@id='employment_selection']/ul[2]/li/label/input",
			},
			models.FilterGender: {
				models.GenderMale:   "xpath=//*[@id='gender_selection']/ul[1]/li/label/input",
				models.GenderFemale: "xpath=//*[@id='gender_selection']/ul[2]/li/label/input",
			},
			models.FilterSalary: {
				NotSpecifiedSalary: "xpath=//*[@id='nosalary_selection']/label/input",
			},
			models.FilterEducation: {
				models.EducationHigher:               "xpath=//*[@id='education_selection']/li[1]/label/input",
				models.EducationUnfinishedHigher:     "xpath=//*[@id='education_selection']/li[2]/label/input",
				models.EducationSpecializedSecondary: "xpath=//*[@id='education_selection']/li[3]/label/input",
				models.EducationSecondary:            "xpath=//*[@id='education_selection']/li[4]/label/input",
			},
			models.FilterExperience: {
				models.ExperienceNone:      "xpath=//*[@id='experience_selection']/li[1]/label/input",
				models.ExperienceUpTo1:     "xpath=//*[@id='experience_selection']/li[2]/label/input",
				models.Experience1To2:      "xpath=//*[@id='experience_selection']/li[3]/label/input",
				models.Experience2To5:      "xpath=//*[@id='experience_selection']/li[4]/label/input",
				models.ExperienceMoreThan5: "xpath=//*[@id='experience_selection']/li[5]/label/input",
			},
		},
		dropdowns: map[models.FilterKind][2]string{
			models.FilterAge:    {"xpath=//select[@id='agefrom_selection']", "xpath=//select[@id='ageto_selection']"},
			models.FilterSalary: {"xpath=//*[@id='salaryfrom_selection']", "xpath=//*[@id='salaryto_selection']"},
		},
		brackets: map[int]string{
			10000:  "2",
			15000:  "3",
			20000:  "4",
			30000:  "5",
			40000:  "6",
			50000:  "7",
			100000: "8",
		},
	}
}

func (l *siteLocators) Element(e Element) string {
	return l.elements[e]
}

func (l *siteLocators) Checkbox(kind models.FilterKind, value string) (string, bool) {
	sel, ok := l.checkboxes[kind][value]
	return sel, ok
}

func (l *siteLocators) Dropdown(kind models.FilterKind, b Bound) (string, bool) {
	pair, ok := l.dropdowns[kind]
	if !ok || b < From || b > To {
		return "", false
	}
	return pair[b], true
}

func (l *siteLocators) SalaryBracket(amount int) (string, bool) {
	v, ok := l.brackets[amount]
	return v, ok
}
