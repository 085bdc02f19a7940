package bot

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

func webappKeyboard(url string) tgbotapi.InlineKeyboardMarkup {
	btn := tgbotapi.InlineKeyboardButton{
		Text:   "📋 Открыть приложение",
		WebApp: &tgbotapi.WebAppInfo{URL: url},
	}
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(btn))
}
