package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/smartdom/crm-bot/internal/domain/users"
)

type Bot struct {
	api       *tgbotapi.BotAPI
	log       *slog.Logger
	users     *users.Repo
	webappURL string
}

func New(api *tgbotapi.BotAPI, log *slog.Logger, usersRepo *users.Repo, webappURL string) *Bot {
	return &Bot{api: api, log: log, users: usersRepo, webappURL: webappURL}
}

func (b *Bot) Run(ctx context.Context, timeoutSec int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSec
	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd := <-updates:
			if upd.Message != nil {
				b.onMessage(ctx, upd)
			}
		}
	}
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send failed", "err", err)
	}
}

func (b *Bot) onMessage(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.handleStart(ctx, chatID, msg.From)
	case "help":
		b.handleHelp(chatID)
	default:
		b.send(tgbotapi.NewMessage(chatID, "Не понимаю. Наберите /help для списка команд."))
	}
}

// handleStart регистрирует пользователя (или обновляет имя) и выдаёт кнопку WebApp.
func (b *Bot) handleStart(ctx context.Context, chatID int64, from *tgbotapi.User) {
	if from == nil {
		return
	}
	name := strings.TrimSpace(from.FirstName + " " + from.LastName)
	if name == "" {
		name = from.UserName
	}

	u, err := b.users.UpsertFromTelegram(ctx, from.ID, name)
	if err != nil {
		b.log.Error("start: upsert user", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Ошибка регистрации, попробуйте позже."))
		return
	}

	roleRU := "монтажник"
	if u.Role == users.RoleAdmin {
		roleRU = "администратор"
	}
	text := fmt.Sprintf("Здравствуйте, %s!\nВаша роль: %s.\nОткройте приложение для работы с отчётами.", u.Name, roleRU)

	m := tgbotapi.NewMessage(chatID, text)
	m.ReplyMarkup = webappKeyboard(b.webappURL)
	b.send(m)
}

func (b *Bot) handleHelp(chatID int64) {
	text := "Команды:\n" +
		"/start — регистрация и кнопка приложения\n" +
		"/help — эта справка\n\n" +
		"Отчёты о работах, объекты и прайс — в приложении."
	m := tgbotapi.NewMessage(chatID, text)
	m.ReplyMarkup = webappKeyboard(b.webappURL)
	b.send(m)
}
