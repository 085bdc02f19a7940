package bot

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/smartdom/crm-bot/internal/domain/reports"
)

// InternalHandler — приёмник внутреннего канала: бэкенд присылает payload
// отчёта, бот рендерит XLSX и отправляет документ админу в чат.
func (b *Bot) InternalHandler(secret string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /internal/report/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Report-Secret") != secret {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var p reports.Payload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "bad payload", http.StatusBadRequest)
			return
		}
		if p.AdminTelegramID <= 0 {
			http.Error(w, "adminTelegramId is required", http.StatusBadRequest)
			return
		}

		data, err := buildUserReportXLSX(&p)
		if err != nil {
			b.log.Error("report: xlsx build failed", "err", err)
			http.Error(w, "render failed", http.StatusInternalServerError)
			return
		}

		filename := fmt.Sprintf("report_%d_%s.xlsx", p.User.ID, time.Now().Format("20060102"))
		doc := tgbotapi.NewDocument(p.AdminTelegramID, tgbotapi.FileBytes{Name: filename, Bytes: data})
		doc.Caption = fmt.Sprintf("Отчёт по монтажнику %s", p.User.Name)

		if _, err := b.api.Send(doc); err != nil {
			b.log.Error("report: telegram send failed", "err", err)
			http.Error(w, "delivery failed", http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	return mux
}
