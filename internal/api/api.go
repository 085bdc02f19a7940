package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/smartdom/crm-bot/internal/auth"
	"github.com/smartdom/crm-bot/internal/domain/objects"
	"github.com/smartdom/crm-bot/internal/domain/prices"
	"github.com/smartdom/crm-bot/internal/domain/schedule"
	"github.com/smartdom/crm-bot/internal/infra/metrics"
)

// ScheduleService — ядро расписания/отчётов. Интерфейс здесь, чтобы хендлеры
// тестировались без БД.
type ScheduleService interface {
	Save(ctx context.Context, actor schedule.Actor, in schedule.SaveInput) (*schedule.Report, error)
	Update(ctx context.Context, actor schedule.Actor, id int64, in schedule.UpdateInput) (*schedule.Report, error)
	Submit(ctx context.Context, actor schedule.Actor, in schedule.SubmitInput) (*schedule.Report, error)
	Edit(ctx context.Context, actor schedule.Actor, id int64, in schedule.EditInput) (*schedule.Report, error)
	Approve(ctx context.Context, actor schedule.Actor, id int64, in schedule.ApproveInput) (*schedule.Report, error)
	Reject(ctx context.Context, actor schedule.Actor, id int64) (*schedule.Report, error)
	MarkPaid(ctx context.Context, actor schedule.Actor, id int64) (*schedule.Report, error)
	ConfirmPayment(ctx context.Context, actor schedule.Actor, id int64) (*schedule.Report, error)
	List(ctx context.Context, userID *int64) ([]schedule.Report, error)
	Pending(ctx context.Context, actor schedule.Actor) ([]schedule.Report, error)
}

// ReportDispatcher — сборка и отправка отчёта во внутренний канал бота.
type ReportDispatcher interface {
	RequestUserReport(ctx context.Context, userID, adminTelegramID int64) error
}

type Server struct {
	log      *slog.Logger
	auth     *auth.Middleware
	users    UsersRepo
	objects  *objects.Repo
	docs     DocsRepo
	prices   *prices.Repo
	schedule ScheduleService
	reports  ReportDispatcher
}

func New(log *slog.Logger, am *auth.Middleware, usersRepo UsersRepo, objectsRepo *objects.Repo,
	docsRepo DocsRepo, pricesRepo *prices.Repo, sched ScheduleService, rep ReportDispatcher) *Server {
	return &Server{
		log: log, auth: am, users: usersRepo, objects: objectsRepo,
		docs: docsRepo, prices: pricesRepo, schedule: sched, reports: rep,
	}
}

func (s *Server) Router(allowedOrigins []string, exposeMetrics bool) *chi.Mux {
	r := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Telegram-Init-Data", "X-Telegram-User-Id"},
		AllowCredentials: true,
	})
	r.Use(corsHandler.Handler)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	if exposeMetrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		// Публичные и opt-auth маршруты пользователей.
		r.Get("/users/check-admin", s.checkAdmin)
		r.With(s.auth.Optional).Post("/users", s.createUser)
		r.With(s.auth.Optional).Post("/users/set-admin", s.setAdmin)

		r.Group(func(r chi.Router) {
			r.Use(s.auth.Require)

			r.Get("/user/me", s.currentUser)

			r.Get("/objects", s.listObjects)
			r.Get("/objects/{id}", s.getObject)
			r.Get("/docs", s.listDocs)
			r.Get("/docs/{id}", s.getDoc)
			r.Get("/prices", s.listPrices)
			r.Get("/prices/{id}", s.getPrice)

			r.Get("/schedule", s.listSchedule)
			r.Post("/schedule", s.saveSchedule)
			r.Put("/schedule/{id}", s.updateSchedule)
			r.Post("/schedule/complete", s.completeWork)
			r.Put("/schedule/{id}/edit", s.editReport)
			r.Post("/schedule/{id}/confirm-payment", s.confirmPayment)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.auth.RequireAdmin)

			r.Get("/users", s.listUsers)
			r.Put("/users/{id}", s.updateUser)

			r.Post("/objects", s.createObject)
			r.Put("/objects/{id}", s.updateObject)
			r.Delete("/objects/{id}", s.deleteObject)

			r.Post("/docs", s.createDoc)
			r.Put("/docs/{id}", s.updateDoc)
			r.Delete("/docs/{id}", s.deleteDoc)

			r.Post("/prices", s.createPrice)
			r.Put("/prices/{id}", s.updatePrice)
			r.Delete("/prices/{id}", s.deletePrice)

			r.Get("/schedule/pending", s.pendingReports)
			r.Post("/schedule/{id}/approve", s.approveReport)
			r.Post("/schedule/{id}/reject", s.rejectReport)
			r.Post("/schedule/{id}/mark-paid", s.markPaid)

			r.Post("/reports/users/{id}/request", s.requestUserReport)
		})
	})

	return r
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if pattern == "" {
			pattern = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(r.Method, pattern, strconv.Itoa(ww.Status())).Inc()
	})
}

func urlID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
