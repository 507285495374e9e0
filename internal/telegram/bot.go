package telegram

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"workua-resume-bot/internal/logger"
	"workua-resume-bot/internal/models"
	"workua-resume-bot/internal/pipeline"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// botAPI is the part of tgbotapi.BotAPI the bot uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Searcher runs resume searches on behalf of chats.
type Searcher interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
	Categories(ctx context.Context) ([]models.Category, error)
}

type Bot struct {
	api      botAPI
	searcher Searcher
	sessions *SessionStore
	limiter  *rate.Limiter

	mu      sync.Mutex
	running map[int64]context.CancelFunc
	wg      sync.WaitGroup
}

// NewBot connects to Telegram. perSecond paces outgoing messages.
func NewBot(token string, searcher Searcher, perSecond float64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	logger.Info().Str("username", api.Self.UserName).Msg("🤖 Telegram bot authorized")
	return newBot(api, searcher, rate.NewLimiter(rate.Limit(perSecond), 1)), nil
}

func newBot(api botAPI, searcher Searcher, limiter *rate.Limiter) *Bot {
	return &Bot{
		api:      api,
		searcher: searcher,
		sessions: NewSessionStore(),
		limiter:  limiter,
		running:  make(map[int64]context.CancelFunc),
	}
}

// Run polls updates until ctx is done, then waits for running searches.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)
	logger.Info().Msg("📡 Listening for Telegram updates")

	defer b.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			logger.Info().Msg("🛑 Telegram bot stopping")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.Chat == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// Wait blocks until background searches finish.
func (b *Bot) Wait() {
	b.wg.Wait()
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
		")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
		"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
		"}", "\\}", ".", "\\.", "!", "\\!",
	)
	return replacer.Replace(text)
}

// escapeLinkURL escapes the characters MarkdownV2 reserves inside (...).
func escapeLinkURL(url string) string {
	return strings.NewReplacer("\\", "\\\\", ")", "\\)").Replace(url)
}

func (b *Bot) send(ctx context.Context, msg tgbotapi.MessageConfig) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := b.api.Send(msg); err != nil {
		logger.Error().Err(err).Int64("chat_id", msg.ChatID).Msg("❌ Failed to send message")
		return err
	}
	return nil
}

// reply sends plain text, optionally with a keyboard.
func (b *Bot) reply(ctx context.Context, chatID int64, text string, markup ...interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if len(markup) > 0 {
		msg.ReplyMarkup = markup[0]
	}
	return b.send(ctx, msg)
}

// SendResume relays one harvested resume.
func (b *Bot) SendResume(ctx context.Context, chatID int64, rec models.ResumeRecord, isNew bool) error {
	var sb strings.Builder
	if isNew {
		sb.WriteString("🆕 ")
	}
	sb.WriteString(fmt.Sprintf("*%s*\n", escapeMarkdown(rec.Name)))
	sb.WriteString(fmt.Sprintf("💼 %s\n", escapeMarkdown(rec.Specialization)))
	if rec.Salary != "" {
		sb.WriteString(fmt.Sprintf("💰 %s\n", escapeMarkdown(rec.Salary)))
	}
	if rec.UpdateDate != "" {
		sb.WriteString(fmt.Sprintf("📅 %s\n", escapeMarkdown(rec.UpdateDate)))
	}
	sb.WriteString(fmt.Sprintf("🔗 [Посилання](%s)\n", escapeLinkURL(rec.URL)))

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🔗 Відкрити резюме", rec.URL),
		),
	)
	return b.send(ctx, msg)
}

// SendError tells the user the search failed. Details stay in the log.
func (b *Bot) SendError(ctx context.Context, chatID int64) error {
	return b.reply(ctx, chatID, msgSearchFailed)
}

func (b *Bot) SendStatus(ctx context.Context, chatID int64, message string) error {
	return b.reply(ctx, chatID, "ℹ️ "+message)
}
