package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"workua-resume-bot/internal/logger"
	"workua-resume-bot/internal/models"
	"workua-resume-bot/internal/pipeline"
	"workua-resume-bot/internal/scraper"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	msgChooseSite     = "Оберіть сайт для парсингу даних:"
	msgAskProfession  = "Введіть спеціальність для пошуку (наприклад, Python developer):"
	msgAskLocation    = "Введіть місто для пошуку (наприклад, Київ):"
	msgChooseFilter   = "Оберіть категорію фільтрації:"
	msgNotNumber      = "Будь ласка, введіть числове значення."
	msgTextOnly       = "Будь ласка, введіть текстове повідомлення."
	msgNotFound       = "Не знайдено резюме по вказаним параметрам"
	msgCancelled      = "Пошук скасовано. Введіть /start, щоб почати знову."
	msgBusy           = "Пошук уже виконується, зачекайте або надішліть /cancel."
	msgSearchFailed   = "❌ Відбулася помилка при парсингу. Спробуйте ще раз."
	msgStartHint      = "Введіть /start, щоб почати пошук."
	msgRabotaMissing  = "Функціонал для rabota.ua поки не реалізований."
	msgApplying       = "Застосовуємо фільтри та починаємо фільтрацію..."
	msgLoadCategories = "Завантажуємо актуальний список категорій..."
	msgHelp           = "/start - новий пошук\n/categories - актуальні категорії work.ua\n/cancel - скасувати пошук\n/help - довідка"
)

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	log := logger.With().Int64("chat_id", chatID).Logger()

	if msg.Voice != nil || msg.Audio != nil || msg.Video != nil {
		_ = b.reply(ctx, chatID, msgTextOnly)
		return
	}
	if msg.IsCommand() {
		log.Debug().Str("command", msg.Command()).Msg("Command received")
		b.handleCommand(ctx, chatID, msg.Command())
		return
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		_ = b.reply(ctx, chatID, msgTextOnly)
		return
	}

	sess := b.sessions.Get(chatID)
	switch sess.Step {
	case StepIdle, StepSite:
		b.handleSite(ctx, chatID, text, sess.Step)
	case StepProfession:
		b.sessions.Update(chatID, func(s *Session) {
			s.Profession = text
			s.Step = StepLocation
		})
		_ = b.reply(ctx, chatID, msgAskLocation)
	case StepLocation:
		b.sessions.Update(chatID, func(s *Session) {
			s.Location = text
			s.Step = StepCategory
		})
		_ = b.reply(ctx, chatID, fmt.Sprintf("Спеціальність: %s\nЛокація: %s", sess.Profession, text))
		_ = b.reply(ctx, chatID, categoryPrompt())
	case StepCategory:
		b.handleCategory(ctx, chatID, text)
	case StepFilterMenu:
		b.handleFilterMenu(ctx, chatID, text)
	case StepSearchParams:
		b.handleOption(ctx, chatID, text, models.FilterSearchParams, searchParamOptions)
	case StepEmployment:
		b.handleOption(ctx, chatID, text, models.FilterEmployment, employmentOptions)
	case StepGender:
		b.handleOption(ctx, chatID, text, models.FilterGender, genderOptions)
	case StepEducation:
		b.handleOption(ctx, chatID, text, models.FilterEducation, educationOptions)
	case StepExperience:
		b.handleOption(ctx, chatID, text, models.FilterExperience, experienceOptions)
	case StepAgeFrom, StepAgeTo, StepSalaryFrom, StepSalaryTo:
		b.handleBound(ctx, chatID, text, sess.Step)
	case StepSalaryNotSpecified:
		b.handleSalaryNotSpecified(ctx, chatID, text)
	case StepRunning:
		_ = b.reply(ctx, chatID, msgBusy)
	}
}

func (b *Bot) handleCommand(ctx context.Context, chatID int64, command string) {
	switch command {
	case "start":
		if b.isRunning(chatID) {
			_ = b.reply(ctx, chatID, msgBusy)
			return
		}
		b.sessions.Reset(chatID)
		b.sessions.Update(chatID, func(s *Session) { s.Step = StepSite })
		_ = b.reply(ctx, chatID, msgChooseSite, siteKeyboard())
	case "categories":
		_ = b.reply(ctx, chatID, msgLoadCategories)
		b.wg.Add(1)
		go b.listCategories(ctx, chatID)
	case "cancel":
		b.cancelSearch(chatID)
		b.sessions.Reset(chatID)
		_ = b.reply(ctx, chatID, msgCancelled, tgbotapi.NewRemoveKeyboard(true))
	case "help":
		_ = b.reply(ctx, chatID, msgHelp)
	default:
		_ = b.reply(ctx, chatID, msgStartHint)
	}
}

func (b *Bot) handleSite(ctx context.Context, chatID int64, text string, step Step) {
	switch {
	case sameLabel(text, siteWorkUA):
		b.sessions.Update(chatID, func(s *Session) { s.Step = StepProfession })
		_ = b.reply(ctx, chatID, msgAskProfession, tgbotapi.NewRemoveKeyboard(true))
	case sameLabel(text, siteRabota):
		_ = b.reply(ctx, chatID, msgRabotaMissing)
	case step == StepSite:
		_ = b.reply(ctx, chatID, msgChooseSite, siteKeyboard())
	default:
		_ = b.reply(ctx, chatID, msgStartHint)
	}
}

func (b *Bot) handleCategory(ctx context.Context, chatID int64, text string) {
	index, err := strconv.Atoi(text)
	if err != nil {
		var ok bool
		if index, ok = matchCategory(text); !ok {
			_ = b.reply(ctx, chatID, "Будь ласка, введіть номер категорії.")
			_ = b.reply(ctx, chatID, categoryPrompt())
			return
		}
	}
	if index < 1 || index > len(categoryNames) {
		_ = b.reply(ctx, chatID, fmt.Sprintf("Будь ласка, оберіть номер категорії від 1 до %d.", len(categoryNames)))
		_ = b.reply(ctx, chatID, categoryPrompt())
		return
	}

	b.sessions.Update(chatID, func(s *Session) {
		s.Category = index
		s.Step = StepFilterMenu
	})
	_ = b.reply(ctx, chatID, fmt.Sprintf("Категорія встановлена: %d", index))
	_ = b.reply(ctx, chatID, msgChooseFilter, filterMenuKeyboard())
}

func (b *Bot) showMenu(ctx context.Context, chatID int64) {
	b.sessions.Update(chatID, func(s *Session) { s.Step = StepFilterMenu })
	_ = b.reply(ctx, chatID, msgChooseFilter, filterMenuKeyboard())
}

func (b *Bot) handleFilterMenu(ctx context.Context, chatID int64, text string) {
	next := func(step Step, prompt string, markup interface{}) {
		b.sessions.Update(chatID, func(s *Session) { s.Step = step })
		_ = b.reply(ctx, chatID, prompt, markup)
	}

	switch {
	case sameLabel(text, btnSearchParams):
		next(StepSearchParams, "Оберіть параметр пошуку:", optionKeyboard(searchParamOptions))
	case sameLabel(text, btnEmployment):
		next(StepEmployment, "Оберіть тип зайнятості:", optionKeyboard(employmentOptions))
	case sameLabel(text, btnAge):
		next(StepAgeFrom, "Введіть мінімальний вік:", skipKeyboard())
	case sameLabel(text, btnGender):
		next(StepGender, "Оберіть стать:", optionKeyboard(genderOptions))
	case sameLabel(text, btnSalary):
		next(StepSalaryFrom, "Введіть мінімальну зарплату:", salaryKeyboard())
	case sameLabel(text, btnEducation):
		next(StepEducation, "Оберіть рівень освіти:", optionKeyboard(educationOptions))
	case sameLabel(text, btnExperience):
		next(StepExperience, "Оберіть досвід роботи:", optionKeyboard(experienceOptions))
	case sameLabel(text, btnReset):
		b.sessions.Update(chatID, func(s *Session) { s.Filters = models.FilterSpec{} })
		_ = b.reply(ctx, chatID, "Фільтри скинуто.")
		b.showMenu(ctx, chatID)
	case sameLabel(text, btnApply):
		b.startSearch(ctx, chatID)
	default:
		b.showMenu(ctx, chatID)
	}
}

func (b *Bot) handleOption(ctx context.Context, chatID int64, text string, kind models.FilterKind, opts []option) {
	if sameLabel(text, btnBack) {
		b.showMenu(ctx, chatID)
		return
	}
	opt, ok := matchOption(opts, text)
	if !ok {
		_ = b.reply(ctx, chatID, "Оберіть варіант з клавіатури.", optionKeyboard(opts))
		return
	}
	b.sessions.Update(chatID, func(s *Session) { s.Filters.AddValue(kind, opt.Value) })
	_ = b.reply(ctx, chatID, fmt.Sprintf("Обрано: %s", opt.Label))
	b.showMenu(ctx, chatID)
}

// parseNumber accepts a non-negative integer, ignoring digit grouping spaces.
func parseNumber(text string) (int, error) {
	n, err := strconv.Atoi(strings.ReplaceAll(text, " ", ""))
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative value %d", n)
	}
	return n, nil
}

func (b *Bot) handleBound(ctx context.Context, chatID int64, text string, step Step) {
	var value *int
	if !sameLabel(text, btnSkip) {
		n, err := parseNumber(text)
		if err != nil {
			_ = b.reply(ctx, chatID, msgNotNumber)
			return
		}
		value = models.IntPtr(n)
	}

	var sess Session
	b.sessions.Update(chatID, func(s *Session) {
		switch step {
		case StepAgeFrom:
			s.Filters.Age = &models.AgeRange{From: value}
			s.Step = StepAgeTo
		case StepAgeTo:
			if s.Filters.Age == nil {
				s.Filters.Age = &models.AgeRange{}
			}
			s.Filters.Age.To = value
			s.Step = StepFilterMenu
		case StepSalaryFrom:
			s.Filters.Salary = &models.SalaryRange{From: value}
			s.Step = StepSalaryTo
		case StepSalaryTo:
			if s.Filters.Salary == nil {
				s.Filters.Salary = &models.SalaryRange{}
			}
			s.Filters.Salary.To = value
			s.Step = StepSalaryNotSpecified
		}
		sess = *s
	})

	switch step {
	case StepAgeFrom:
		_ = b.reply(ctx, chatID, "Введіть максимальний вік:", skipKeyboard())
	case StepAgeTo:
		_ = b.reply(ctx, chatID, fmt.Sprintf("Діапазон віку встановлений: %s - %s",
			formatBound(sess.Filters.Age.From), formatBound(sess.Filters.Age.To)))
		b.showMenu(ctx, chatID)
	case StepSalaryFrom:
		_ = b.reply(ctx, chatID, "Введіть максимальну зарплату:", salaryKeyboard())
	case StepSalaryTo:
		_ = b.reply(ctx, chatID, "Показувати резюме без вказаної зарплати?", yesNoKeyboard())
	}
}

func (b *Bot) handleSalaryNotSpecified(ctx context.Context, chatID int64, text string) {
	var notSpecified bool
	switch {
	case sameLabel(text, btnYes):
		notSpecified = true
	case sameLabel(text, btnNo):
	default:
		_ = b.reply(ctx, chatID, "Оберіть \"Так\" або \"Ні\".", yesNoKeyboard())
		return
	}

	var salary models.SalaryRange
	b.sessions.Update(chatID, func(s *Session) {
		if s.Filters.Salary == nil {
			s.Filters.Salary = &models.SalaryRange{}
		}
		s.Filters.Salary.NotSpecified = notSpecified
		salary = *s.Filters.Salary
	})
	_ = b.reply(ctx, chatID, fmt.Sprintf("Діапазон зарплати встановлений: %s - %s",
		formatBound(salary.From), formatBound(salary.To)))
	b.showMenu(ctx, chatID)
}

func formatBound(v *int) string {
	if v == nil {
		return "—"
	}
	return strconv.Itoa(*v)
}

func (b *Bot) isRunning(chatID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.running[chatID]
	return ok
}

func (b *Bot) cancelSearch(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if cancel, ok := b.running[chatID]; ok {
		cancel()
	}
}

// startSearch hands the collected session to the searcher in the background.
func (b *Bot) startSearch(ctx context.Context, chatID int64) {
	var req pipeline.Request
	b.sessions.Update(chatID, func(s *Session) {
		req = pipeline.Request{
			ChatID:     chatID,
			Category:   s.Category,
			Profession: s.Profession,
			Location:   s.Location,
			Filters:    s.Filters,
		}
		s.Step = StepRunning
	})

	runCtx, cancel := context.WithCancel(ctx)
	b.mu.Lock()
	b.running[chatID] = cancel
	b.mu.Unlock()

	_ = b.reply(ctx, chatID, msgApplying, tgbotapi.NewRemoveKeyboard(true))
	b.wg.Add(1)
	go b.runSearch(runCtx, cancel, chatID, req)
}

func (b *Bot) runSearch(ctx context.Context, cancel context.CancelFunc, chatID int64, req pipeline.Request) {
	defer b.wg.Done()
	defer func() {
		cancel()
		b.mu.Lock()
		delete(b.running, chatID)
		b.mu.Unlock()
	}()
	// replies use a fresh context so a cancelled search can still report
	replyCtx := context.WithoutCancel(ctx)

	result, err := b.searcher.Run(ctx, req)
	switch {
	case errors.Is(err, context.Canceled):
		logger.Info().Int64("chat_id", chatID).Msg("Search cancelled")
		return
	case errors.Is(err, scraper.ErrOutOfRange):
		b.sessions.Update(chatID, func(s *Session) { s.Step = StepCategory })
		_ = b.reply(replyCtx, chatID, fmt.Sprintf("Категорія %d зараз недоступна на сайті. Оберіть іншу.", req.Category))
		_ = b.reply(replyCtx, chatID, categoryPrompt())
		return
	case err != nil:
		logger.Error().Err(err).Int64("chat_id", chatID).Msg("❌ Search failed")
		_ = b.SendError(replyCtx, chatID)
		b.showMenu(replyCtx, chatID)
		return
	}

	// filters are consumed by one search
	b.sessions.Reset(chatID)
	if len(result.Records) == 0 {
		_ = b.reply(replyCtx, chatID, msgNotFound)
		_ = b.reply(replyCtx, chatID, msgStartHint)
		return
	}

	fresh := 0
	for _, rec := range result.Records {
		isNew := result.New[rec.URL]
		if isNew {
			fresh++
		}
		if err := b.SendResume(replyCtx, chatID, rec, isNew); err != nil {
			logger.Warn().Err(err).Str("url", rec.URL).Msg("⚠️ Failed to relay resume")
		}
	}
	_ = b.SendStatus(replyCtx, chatID, fmt.Sprintf("Знайдено %d резюме (нових: %d). %s", len(result.Records), fresh, msgStartHint))
}

func (b *Bot) listCategories(ctx context.Context, chatID int64) {
	defer b.wg.Done()

	categories, err := b.searcher.Categories(ctx)
	if err != nil {
		logger.Error().Err(err).Int64("chat_id", chatID).Msg("❌ Failed to load categories")
		_ = b.SendError(context.WithoutCancel(ctx), chatID)
		return
	}
	if len(categories) == 0 {
		_ = b.SendStatus(ctx, chatID, "Категорії не знайдено.")
		return
	}

	var sb strings.Builder
	for _, c := range categories {
		sb.WriteString(fmt.Sprintf("%d. %s\n", c.Index, c.Name))
	}
	_ = b.reply(ctx, chatID, sb.String())
}
