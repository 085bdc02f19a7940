package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"github.com/smartdom/crm-bot/internal/auth"
	"github.com/smartdom/crm-bot/internal/domain/schedule"
)

/* Представление отчёта на проводе — формат, который ждёт WebApp:
   objectId и itemId исторически строки. */

type workLogItemJSON struct {
	ItemID      string  `json:"itemId"`
	Quantity    int     `json:"quantity"`
	Coefficient float64 `json:"coefficient"`
}

type reportJSON struct {
	ID        int64             `json:"id"`
	UserID    int64             `json:"userId"`
	Date      string            `json:"date"`
	ObjectID  *string           `json:"objectId"`
	Completed bool              `json:"completed"`
	Status    string            `json:"status"`
	Earnings  int64             `json:"earnings"`
	WorkLog   []workLogItemJSON `json:"workLog"`
}

func toReportJSON(rep *schedule.Report) reportJSON {
	out := reportJSON{
		ID:        rep.ID,
		UserID:    rep.UserID,
		Date:      rep.Date,
		Completed: rep.Completed,
		Status:    string(rep.Status),
		Earnings:  rep.Earnings,
		WorkLog:   make([]workLogItemJSON, 0, len(rep.WorkLog)),
	}
	if rep.ObjectID != nil {
		s := strconv.FormatInt(*rep.ObjectID, 10)
		out.ObjectID = &s
	}
	for _, e := range rep.WorkLog {
		out.WorkLog = append(out.WorkLog, workLogItemJSON{
			ItemID:      strconv.FormatInt(e.PriceItemID, 10),
			Quantity:    e.Quantity,
			Coefficient: e.Coefficient,
		})
	}
	return out
}

func toReportList(reps []schedule.Report) []reportJSON {
	out := make([]reportJSON, 0, len(reps))
	for i := range reps {
		out = append(out, toReportJSON(&reps[i]))
	}
	return out
}

/* Входные формы */

type workLogItemReq struct {
	ItemID      flexID    `json:"itemId"`
	Quantity    *looseInt `json:"quantity"`
	Coefficient *float64  `json:"coefficient"`
}

func toWorkEntries(items []workLogItemReq) []schedule.WorkEntryInput {
	out := make([]schedule.WorkEntryInput, 0, len(items))
	for _, it := range items {
		in := schedule.WorkEntryInput{ItemID: int64(it.ItemID)}
		if it.Quantity != nil {
			in.Quantity = int(*it.Quantity)
		}
		if it.Coefficient != nil {
			in.Coefficient = *it.Coefficient
		}
		out = append(out, in)
	}
	return out
}

func optObjectID(f *flexID) (*int64, bool) {
	if f == nil {
		return nil, false
	}
	if *f <= 0 {
		return nil, true // невалидный или нулевой id очищает привязку
	}
	v := int64(*f)
	return &v, true
}

func optStatus(s *string) *schedule.Status {
	if s == nil {
		return nil
	}
	st := schedule.Status(*s)
	return &st
}

func optEarnings(m *optMoney) *int64 {
	if m == nil || !m.OK {
		return nil
	}
	v := m.Val
	return &v
}

func actorFrom(r *http.Request) schedule.Actor {
	u := auth.FromContext(r.Context())
	return schedule.Actor{ID: u.ID, Role: u.Role}
}

/* Хендлеры */

func (s *Server) listSchedule(w http.ResponseWriter, r *http.Request) {
	var userID *int64
	if raw := r.URL.Query().Get("userId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			respondError(w, r, http.StatusBadRequest, "Invalid userId")
			return
		}
		userID = &id
	}

	reps, err := s.schedule.List(r.Context(), userID)
	if err != nil {
		s.scheduleError(w, r, err)
		return
	}
	render.JSON(w, r, toReportList(reps))
}

type saveScheduleReq struct {
	UserID   flexID            `json:"userId"`
	Date     string            `json:"date"`
	ObjectID *flexID           `json:"objectId"`
	Status   *string           `json:"status"`
	Earnings *optMoney         `json:"earnings"`
	WorkLog  *[]workLogItemReq `json:"workLog"`
}

func (s *Server) saveSchedule(w http.ResponseWriter, r *http.Request) {
	var body saveScheduleReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, r, http.StatusBadRequest, "No data provided")
		return
	}
	if body.UserID <= 0 {
		respondError(w, r, http.StatusBadRequest, "userId is required")
		return
	}

	in := schedule.SaveInput{
		UserID:   int64(body.UserID),
		Date:     body.Date,
		Status:   optStatus(body.Status),
		Earnings: optEarnings(body.Earnings),
	}
	in.ObjectID, in.ObjectSet = optObjectID(body.ObjectID)
	if body.WorkLog != nil {
		in.WorkLog, in.WorkLogSet = toWorkEntries(*body.WorkLog), true
	}

	rep, err := s.schedule.Save(r.Context(), actorFrom(r), in)
	if err != nil {
		s.scheduleError(w, r, err)
		return
	}
	render.JSON(w, r, toReportJSON(rep))
}

type updateScheduleReq struct {
	ObjectID *flexID           `json:"objectId"`
	Status   *string           `json:"status"`
	Earnings *optMoney         `json:"earnings"`
	WorkLog  *[]workLogItemReq `json:"workLog"`
}

func (s *Server) updateSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, "Report not found")
		return
	}
	var body updateScheduleReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, r, http.StatusBadRequest, "No data provided")
		return
	}

	in := schedule.UpdateInput{
		Status:   optStatus(body.Status),
		Earnings: optEarnings(body.Earnings),
	}
	in.ObjectID, in.ObjectSet = optObjectID(body.ObjectID)
	if body.WorkLog != nil {
		in.WorkLog, in.WorkLogSet = toWorkEntries(*body.WorkLog), true
	}

	rep, err := s.schedule.Update(r.Context(), actorFrom(r), id, in)
	if err != nil {
		s.scheduleError(w, r, err)
		return
	}
	render.JSON(w, r, toReportJSON(rep))
}

type completeWorkReq struct {
	UserID   flexID           `json:"userId"`
	Date     string           `json:"date"`
	ObjectID *flexID          `json:"objectId"`
	Status   *string          `json:"status"`
	WorkLog  []workLogItemReq `json:"workLog"`
}

func (s *Server) completeWork(w http.ResponseWriter, r *http.Request) {
	var body completeWorkReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, r, http.StatusBadRequest, "No data provided")
		return
	}
	if body.UserID <= 0 {
		respondError(w, r, http.StatusBadRequest, "userId is required")
		return
	}

	in := schedule.SubmitInput{
		UserID:  int64(body.UserID),
		Date:    body.Date,
		Status:  optStatus(body.Status),
		WorkLog: toWorkEntries(body.WorkLog),
	}
	in.ObjectID, _ = optObjectID(body.ObjectID)

	rep, err := s.schedule.Submit(r.Context(), actorFrom(r), in)
	if err != nil {
		s.scheduleError(w, r, err)
		return
	}
	render.JSON(w, r, toReportJSON(rep))
}

type editReportReq struct {
	ObjectID *flexID           `json:"objectId"`
	Status   *string           `json:"status"`
	Earnings *optMoney         `json:"earnings"`
	WorkLog  *[]workLogItemReq `json:"workLog"`
}

func (s *Server) editReport(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, "Report not found")
		return
	}
	var body editReportReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, r, http.StatusBadRequest, "No data provided")
		return
	}

	in := schedule.EditInput{
		Status:   optStatus(body.Status),
		Earnings: optEarnings(body.Earnings),
	}
	in.ObjectID, in.ObjectSet = optObjectID(body.ObjectID)
	if body.WorkLog != nil {
		in.WorkLog, in.WorkLogSet = toWorkEntries(*body.WorkLog), true
	}

	rep, err := s.schedule.Edit(r.Context(), actorFrom(r), id, in)
	if err != nil {
		s.scheduleError(w, r, err)
		return
	}
	render.JSON(w, r, toReportJSON(rep))
}

type approveReportReq struct {
	Earnings *optMoney         `json:"earnings"`
	WorkLog  *[]workLogItemReq `json:"workLog"`
}

func (s *Server) approveReport(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, "Report not found")
		return
	}

	// Тело не обязательно: approve без правок — валидный случай.
	var body approveReportReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, r, http.StatusBadRequest, "Invalid JSON")
		return
	}

	in := schedule.ApproveInput{Earnings: optEarnings(body.Earnings)}
	if body.WorkLog != nil {
		in.WorkLog, in.WorkLogSet = toWorkEntries(*body.WorkLog), true
	}

	rep, err := s.schedule.Approve(r.Context(), actorFrom(r), id, in)
	if err != nil {
		s.scheduleError(w, r, err)
		return
	}
	render.JSON(w, r, toReportJSON(rep))
}

func (s *Server) rejectReport(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.schedule.Reject)
}

func (s *Server) markPaid(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.schedule.MarkPaid)
}

func (s *Server) confirmPayment(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.schedule.ConfirmPayment)
}

func (s *Server) transition(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, actor schedule.Actor, id int64) (*schedule.Report, error)) {
	id, ok := urlID(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, "Report not found")
		return
	}
	rep, err := op(r.Context(), actorFrom(r), id)
	if err != nil {
		s.scheduleError(w, r, err)
		return
	}
	render.JSON(w, r, toReportJSON(rep))
}

func (s *Server) pendingReports(w http.ResponseWriter, r *http.Request) {
	reps, err := s.schedule.Pending(r.Context(), actorFrom(r))
	if err != nil {
		s.scheduleError(w, r, err)
		return
	}
	render.JSON(w, r, toReportList(reps))
}
