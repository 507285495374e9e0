package telegram

import (
	"strconv"
	"strings"

	"workua-resume-bot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	siteWorkUA = "work.ua"
	siteRabota = "rabota.ua"

	btnSearchParams = "Параметри пошуку"
	btnEmployment   = "Тип зайнятості"
	btnAge          = "Вік для пошуку"
	btnGender       = "Стать для пошуку"
	btnSalary       = "Зарплата"
	btnEducation    = "Освіта"
	btnExperience   = "Досвід роботи"
	btnReset        = "Скинути фільтри"
	btnApply        = "Застосувати фільтри"
	btnBack         = "Назад"
	btnSkip         = "Пропустити"
	btnYes          = "Так"
	btnNo           = "Ні"
)

// option is one reply button bound to a filter value.
type option struct {
	Label string
	Value string
}

var (
	searchParamOptions = []option{
		{"Пошук лише в заголовку", models.SearchTitleOnly},
		{"Пошук з синонімами", models.SearchWithSynonyms},
		{"Пошук будь-яке з слів", models.SearchAnyWord},
	}
	employmentOptions = []option{
		{"Повна зайнятість", models.EmploymentFullTime},
		{"Неповна зайнятість", models.EmploymentPartTime},
	}
	genderOptions = []option{
		{"Чоловіча", models.GenderMale},
		{"Жіноча", models.GenderFemale},
	}
	educationOptions = []option{
		{"Вища освіта", models.EducationHigher},
		{"Незакінчена вища", models.EducationUnfinishedHigher},
		{"Середня спеціальна", models.EducationSpecializedSecondary},
		{"Середня освіта", models.EducationSecondary},
	}
	experienceOptions = []option{
		{"Без досвіду", models.ExperienceNone},
		{"До 1 року", models.ExperienceUpTo1},
		{"Від 1 до 2 років", models.Experience1To2},
		{"Від 2 до 5 років", models.Experience2To5},
		{"Понад 5 років", models.ExperienceMoreThan5},
	}
	// salaryAmounts are the bounds the site offers in its dropdowns.
	salaryAmounts = []string{"10000", "15000", "20000", "30000", "40000", "50000", "100000"}
)

// categoryNames is the work.ua catalog as shown in the prompt. The live
// list is fetched by /categories; the scraper always resolves it afresh.
var categoryNames = []string{
	"IT, комп'ютери, інтернет",
	"Адміністрація, керівництво середньої ланки",
	"Будівництво, архітектура",
	"Бухгалтерія, аудит",
	"Готельно-ресторанний бізнес, туризм",
	"Дизайн, творчість",
	"ЗМІ, видавництво, поліграфія",
	"Краса, фітнес, спорт",
	"Культура, музика, шоу-бізнес",
	"Логістика, склад, ЗЕД",
	"Маркетинг, реклама, PR",
	"Медицина, фармацевтика",
	"Нерухомість",
	"Освіта, наука",
	"Охорона, безпека",
	"Продаж, закупівля",
	"Робочі спеціальності, виробництво",
	"Роздрібна торгівля",
	"Секретаріат, діловодство, АГВ",
	"Сільське господарство, агробізнес",
	"Страхування",
	"Сфера обслуговування",
	"Телекомунікації та зв'язок",
	"Топменеджмент, керівництво вищої ланки",
	"Транспорт, автобізнес",
	"Управління персоналом, HR",
	"Фінанси, банк",
	"Юриспруденція",
	"Інші сфери діяльності",
}

// normalizeText composes, case-folds and collapses whitespace. Marks are
// kept: й and ї are distinct letters, not accented и and і.
func normalizeText(str string) string {
	t := transform.Chain(norm.NFC, cases.Fold())
	result, _, _ := transform.String(t, str)
	return strings.Join(strings.Fields(result), " ")
}

func sameLabel(a, b string) bool {
	return normalizeText(a) == normalizeText(b)
}

// matchOption finds the option whose label matches text.
func matchOption(opts []option, text string) (option, bool) {
	for _, o := range opts {
		if sameLabel(o.Label, text) {
			return o, true
		}
	}
	return option{}, false
}

// matchCategory accepts a number or a category name and returns the
// 1-based index.
func matchCategory(text string) (int, bool) {
	for i, name := range categoryNames {
		if sameLabel(name, text) {
			return i + 1, true
		}
	}
	return 0, false
}

func categoryPrompt() string {
	var sb strings.Builder
	sb.WriteString("Будь ласка, оберіть категорію для пошуку кандидатів (вкажіть номер):\n\n")
	for i, name := range categoryNames {
		sb.WriteString(strconv.Itoa(i+1) + ". " + name + "\n")
	}
	return sb.String()
}

func keyboard(rows ...[]string) tgbotapi.ReplyKeyboardMarkup {
	kbRows := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
		}
		kbRows = append(kbRows, tgbotapi.NewKeyboardButtonRow(buttons...))
	}
	kb := tgbotapi.NewReplyKeyboard(kbRows...)
	kb.ResizeKeyboard = true
	return kb
}

func optionKeyboard(opts []option) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]string, 0, len(opts)+1)
	for _, o := range opts {
		rows = append(rows, []string{o.Label})
	}
	rows = append(rows, []string{btnBack})
	return keyboard(rows...)
}

func siteKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return keyboard([]string{siteWorkUA, siteRabota})
}

func filterMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return keyboard(
		[]string{btnSearchParams, btnEmployment, btnAge},
		[]string{btnGender, btnSalary, btnEducation},
		[]string{btnExperience, btnReset},
		[]string{btnApply},
	)
}

func salaryKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return keyboard(salaryAmounts[:4], salaryAmounts[4:], []string{btnSkip})
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return keyboard([]string{btnSkip})
}

func yesNoKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return keyboard([]string{btnYes, btnNo})
}
