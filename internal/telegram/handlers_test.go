package telegram

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"workua-resume-bot/internal/models"
	"workua-resume-bot/internal/pipeline"
	"workua-resume-bot/internal/scraper"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversation_FullFlow(t *testing.T) {
	b, api, searcher := newTestBot()
	searcher.result = &pipeline.Result{
		Records: []models.ResumeRecord{
			{Name: "A", Specialization: "Go", Salary: "1", URL: "https://www.work.ua/resumes/1/"},
			{Name: "B", Specialization: "Go", Salary: "2", URL: "https://www.work.ua/resumes/2/"},
		},
		New: map[string]bool{"https://www.work.ua/resumes/2/": true},
	}

	say(b,
		"/start", "work.ua", "Python developer", "Київ", "1",
		btnSearchParams, "пошук лише в заголовку",
		btnEmployment, "Повна зайнятість",
		btnAge, "21", "35",
		btnGender, "Жіноча",
		btnSalary, "15 000", btnSkip, btnYes,
		btnEducation, "Незакінчена вища",
		btnExperience, "Від 2 до 5 років",
		btnApply,
	)
	b.Wait()

	require.Len(t, searcher.requests, 1)
	req := searcher.requests[0]
	assert.Equal(t, chatID, req.ChatID)
	assert.Equal(t, 1, req.Category)
	assert.Equal(t, "Python developer", req.Profession)
	assert.Equal(t, "Київ", req.Location)
	assert.Equal(t, models.FilterSpec{
		SearchParams: []string{models.SearchTitleOnly},
		Employment:   []string{models.EmploymentFullTime},
		Age:          &models.AgeRange{From: models.IntPtr(21), To: models.IntPtr(35)},
		Gender:       []string{models.GenderFemale},
		Salary:       &models.SalaryRange{From: models.IntPtr(15000), NotSpecified: true},
		Education:    []string{models.EducationUnfinishedHigher},
		Experience:   []string{models.Experience2To5},
	}, req.Filters)

	texts := api.texts()
	assert.Contains(t, texts, "Спеціальність: Python developer\nЛокація: Київ")
	assert.Contains(t, texts, "Діапазон віку встановлений: 21 - 35")
	assert.Contains(t, texts, "Діапазон зарплати встановлений: 15000 - —")
	assert.Contains(t, texts, msgApplying)

	var resumes []string
	for _, m := range api.sent {
		if m.ParseMode == tgbotapi.ModeMarkdownV2 {
			resumes = append(resumes, m.Text)
		}
	}
	require.Len(t, resumes, 2)
	assert.NotContains(t, resumes[0], "🆕")
	assert.Contains(t, resumes[1], "🆕")
	assert.Contains(t, api.last().Text, "Знайдено 2 резюме (нових: 1)")

	assert.Equal(t, StepIdle, b.sessions.Get(chatID).Step, "session consumed")
}

func TestConversation_CategoryValidation(t *testing.T) {
	b, api, _ := newTestBot()
	say(b, "/start", "work.ua", "Водій", "Львів")

	say(b, "abc")
	assert.Contains(t, api.texts(), "Будь ласка, введіть номер категорії.")
	assert.Equal(t, StepCategory, b.sessions.Get(chatID).Step)

	say(b, "30")
	assert.Contains(t, api.texts(), "Будь ласка, оберіть номер категорії від 1 до 29.")
	assert.Equal(t, StepCategory, b.sessions.Get(chatID).Step)

	say(b, "транспорт, автобізнес")
	sess := b.sessions.Get(chatID)
	assert.Equal(t, 25, sess.Category)
	assert.Equal(t, StepFilterMenu, sess.Step)
}

func TestConversation_NumericReprompt(t *testing.T) {
	b, api, _ := newTestBot()
	say(b, "/start", "work.ua", "p", "l", "2", btnAge, "двадцять")

	assert.Equal(t, msgNotNumber, api.last().Text)
	assert.Equal(t, StepAgeFrom, b.sessions.Get(chatID).Step)

	say(b, "-5")
	assert.Equal(t, msgNotNumber, api.last().Text)

	say(b, btnSkip, "40")
	sess := b.sessions.Get(chatID)
	assert.Equal(t, StepFilterMenu, sess.Step)
	assert.Nil(t, sess.Filters.Age.From)
	assert.Equal(t, 40, *sess.Filters.Age.To)
}

func TestConversation_SiteSelection(t *testing.T) {
	b, api, _ := newTestBot()

	say(b, "hello")
	assert.Equal(t, msgStartHint, api.last().Text)

	say(b, "/start")
	msg := api.last()
	assert.Equal(t, msgChooseSite, msg.Text)
	_, ok := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	assert.True(t, ok)

	say(b, "rabota.ua")
	assert.Equal(t, msgRabotaMissing, api.last().Text)
	assert.Equal(t, StepSite, b.sessions.Get(chatID).Step)

	say(b, "WORK.UA")
	assert.Equal(t, msgAskProfession, api.last().Text)
}

func TestConversation_NonTextAndOptions(t *testing.T) {
	b, api, _ := newTestBot()

	voice := textMessage("")
	voice.Voice = &tgbotapi.Voice{FileID: "v"}
	b.handleMessage(context.Background(), voice)
	assert.Equal(t, msgTextOnly, api.last().Text)

	say(b, "/start", "work.ua", "p", "l", "3", btnGender, "Інша")
	assert.Equal(t, "Оберіть варіант з клавіатури.", api.last().Text)
	assert.Equal(t, StepGender, b.sessions.Get(chatID).Step)

	say(b, btnBack)
	assert.Equal(t, msgChooseFilter, api.last().Text)

	say(b, btnGender, "Чоловіча", btnGender, "Чоловіча")
	assert.Equal(t, []string{models.GenderMale}, b.sessions.Get(chatID).Filters.Gender)

	say(b, btnReset)
	assert.True(t, b.sessions.Get(chatID).Filters.IsEmpty())
}

func TestConversation_SearchErrors(t *testing.T) {
	t.Run("generic failure returns to the menu", func(t *testing.T) {
		b, api, searcher := newTestBot()
		searcher.err = errors.New("apply employment filters: full_time: navigation timeout: playwright: Timeout 10000ms exceeded")
		say(b, "/start", "work.ua", "p", "l", "4", btnApply)
		b.Wait()

		assert.Contains(t, api.texts(), msgSearchFailed)
		for _, text := range api.texts() {
			assert.NotContains(t, text, "playwright", "internal error details stay in the log")
		}
		sess := b.sessions.Get(chatID)
		assert.Equal(t, StepFilterMenu, sess.Step)
		assert.Equal(t, 4, sess.Category, "collected input kept for a retry")
	})

	t.Run("out of range re-prompts the category", func(t *testing.T) {
		b, api, searcher := newTestBot()
		searcher.err = fmt.Errorf("%w: category index should be between 1 and 20, got 29", scraper.ErrOutOfRange)
		say(b, "/start", "work.ua", "p", "l", "29", btnApply)
		b.Wait()

		assert.Contains(t, api.texts(), "Категорія 29 зараз недоступна на сайті. Оберіть іншу.")
		assert.Equal(t, StepCategory, b.sessions.Get(chatID).Step)
	})

	t.Run("empty result", func(t *testing.T) {
		b, api, _ := newTestBot()
		say(b, "/start", "work.ua", "p", "l", "5", btnApply)
		b.Wait()
		assert.Contains(t, api.texts(), msgNotFound)
	})
}

func TestConversation_BusyAndCancel(t *testing.T) {
	b, api, searcher := newTestBot()
	searcher.block = make(chan struct{})
	say(b, "/start", "work.ua", "p", "l", "6", btnApply)

	say(b, "anything")
	assert.Equal(t, msgBusy, api.last().Text)
	say(b, "/start")
	assert.Equal(t, msgBusy, api.last().Text)

	say(b, "/cancel")
	b.Wait()

	assert.Contains(t, api.texts(), msgCancelled)
	assert.False(t, b.isRunning(chatID))
	assert.Equal(t, StepIdle, b.sessions.Get(chatID).Step)
	assert.NotContains(t, api.texts(), msgNotFound)
}

func TestCategoriesCommand(t *testing.T) {
	b, api, searcher := newTestBot()
	searcher.categories = []models.Category{
		{Name: "IT, комп'ютери, інтернет", Index: 1},
		{Name: "Нерухомість", Index: 2},
	}
	say(b, "/categories")
	b.Wait()

	assert.Equal(t, "1. IT, комп'ютери, інтернет\n2. Нерухомість\n", api.last().Text)
}

func TestSessionStore(t *testing.T) {
	store := NewSessionStore()
	store.Update(1, func(s *Session) { s.Profession = "a" })
	store.Update(2, func(s *Session) { s.Profession = "b" })

	assert.Equal(t, "a", store.Get(1).Profession)
	assert.Equal(t, "b", store.Get(2).Profession)

	store.Reset(1)
	assert.Equal(t, Session{}, store.Get(1))
	assert.Equal(t, "b", store.Get(2).Profession)
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, normalizeText("Повна зайнятість"), normalizeText("  ПОВНА   ЗАЙНЯТІСТЬ "))
	assert.Equal(t, normalizeText("Київ"), normalizeText("Киі\u0308в"), "decomposed ї composes")
	assert.NotEqual(t, normalizeText("Київ"), normalizeText("Киів"))
	assert.NotEqual(t, normalizeText("мій"), normalizeText("мии"))
	idx, ok := matchCategory("юриспруденція")
	require.True(t, ok)
	assert.Equal(t, 28, idx)
}
