package schedule

import (
	"context"
	"log/slog"

	"github.com/smartdom/crm-bot/internal/infra/metrics"
)

// Store — персистентное хранилище отчётов. Save выполняет upsert строки и
// замену журнала работ одной транзакцией.
type Store interface {
	GetByID(ctx context.Context, id int64) (*Report, error)
	GetByUserDate(ctx context.Context, userID int64, date string) (*Report, error)
	List(ctx context.Context, userID *int64, status *Status) ([]Report, error)
	Save(ctx context.Context, r *Report, replaceLog bool) error
}

// Catalog — батч-чтение цен по id; отсутствующие id просто не попадают в карту.
type Catalog interface {
	PricesByIDs(ctx context.Context, ids []int64) (map[int64]CatalogPrice, error)
}

type Service struct {
	store   Store
	catalog Catalog
	log     *slog.Logger
}

func NewService(store Store, catalog Catalog, log *slog.Logger) *Service {
	return &Service{store: store, catalog: catalog, log: log}
}

/* Входные структуры. Нормализация гибких JSON-полей выполняется на границе
   (internal/api) один раз; сюда приходят уже типизированные значения.
   nil у указателя означает «поле не передано». */

type WorkEntryInput struct {
	ItemID      int64
	Quantity    int
	Coefficient float64
}

type SaveInput struct {
	UserID     int64
	Date       string
	ObjectID   *int64
	ObjectSet  bool
	Status     *Status
	Earnings   *int64
	WorkLog    []WorkEntryInput
	WorkLogSet bool
}

type UpdateInput struct {
	ObjectID   *int64
	ObjectSet  bool
	Status     *Status
	Earnings   *int64
	WorkLog    []WorkEntryInput
	WorkLogSet bool
}

type SubmitInput struct {
	UserID   int64
	Date     string
	ObjectID *int64
	Status   *Status
	WorkLog  []WorkEntryInput
}

type EditInput struct {
	ObjectID   *int64
	ObjectSet  bool
	Status     *Status
	Earnings   *int64
	WorkLog    []WorkEntryInput
	WorkLogSet bool
}

type ApproveInput struct {
	Earnings   *int64
	WorkLog    []WorkEntryInput
	WorkLogSet bool
}

// normalizeEntries проверяет id и приводит количества/коэффициенты.
// Невалидный id — единственный громкий отказ (ErrInvalidWorkLog);
// количество и коэффициент чинятся молча, это осознанный fail-safe.
func normalizeEntries(in []WorkEntryInput) ([]WorkLogEntry, error) {
	out := make([]WorkLogEntry, 0, len(in))
	for _, e := range in {
		if e.ItemID <= 0 {
			return nil, ErrInvalidWorkLog
		}
		qty := e.Quantity
		if qty < 1 {
			qty = 1
		}
		coef := e.Coefficient
		if coef <= 0 {
			coef = 1.0
		}
		out = append(out, WorkLogEntry{PriceItemID: e.ItemID, Quantity: qty, Coefficient: coef})
	}
	return out, nil
}

func (s *Service) recalc(ctx context.Context, entries []WorkLogEntry) (int64, error) {
	snapshot, err := s.catalog.PricesByIDs(ctx, ReferencedItemIDs(entries))
	if err != nil {
		return 0, err
	}
	return CalculateEarnings(entries, snapshot), nil
}

// replaceWorkLog нормализует журнал, пересчитывает заработок и кладёт
// результат в отчёт. Сохранение — забота вызывающего.
func (s *Service) replaceWorkLog(ctx context.Context, r *Report, in []WorkEntryInput) error {
	entries, err := normalizeEntries(in)
	if err != nil {
		return err
	}
	total, err := s.recalc(ctx, entries)
	if err != nil {
		return err
	}
	r.WorkLog = entries
	r.Earnings = total
	return nil
}

func validateTarget(userID int64, date string) error {
	if userID <= 0 {
		return invalidField("userId", "must be a positive integer")
	}
	if !ValidDate(date) {
		return invalidField("date", "must be YYYY-MM-DD")
	}
	return nil
}

// Save — создание или обновление отчёта по ключу (userId, date).
// Статусы за пределами {draft, pending_approval} от не-админа принудительно
// превращаются в draft; earnings от не-админа молча игнорируется.
func (s *Service) Save(ctx context.Context, actor Actor, in SaveInput) (*Report, error) {
	if err := validateTarget(in.UserID, in.Date); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.ID != in.UserID {
		return nil, ErrAccessDenied
	}
	if in.Status != nil && !ValidStatus(*in.Status) {
		return nil, invalidField("status", "unknown status value")
	}

	r, err := s.store.GetByUserDate(ctx, in.UserID, in.Date)
	if err != nil {
		return nil, err
	}

	if r == nil {
		r = &Report{UserID: in.UserID, Date: in.Date, Status: StatusDraft}
		if in.ObjectSet {
			r.ObjectID = in.ObjectID
		}
	} else if !CanEdit(r, actor) {
		return nil, ErrAccessDenied
	} else if in.ObjectSet {
		r.ObjectID = in.ObjectID
	}

	if in.Status != nil {
		st := *in.Status
		if !actor.IsAdmin() && st != StatusDraft && st != StatusPendingApproval {
			st = StatusDraft
		}
		r.Status = st
	}
	if in.Earnings != nil && actor.IsAdmin() {
		r.Earnings = *in.Earnings
	}
	if in.WorkLogSet {
		if err := s.replaceWorkLog(ctx, r, in.WorkLog); err != nil {
			return nil, err
		}
	}
	r.Completed = r.Status == StatusCompleted

	if err := s.store.Save(ctx, r, in.WorkLogSet); err != nil {
		return nil, err
	}
	return r, nil
}

// Update — точечное обновление по id (в основном привязка объекта).
// Статус и earnings напрямую меняет только админ; чужие попытки игнорируются.
func (s *Service) Update(ctx context.Context, actor Actor, id int64, in UpdateInput) (*Report, error) {
	r, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrNotFound
	}
	if !CanEdit(r, actor) {
		return nil, ErrAccessDenied
	}

	if in.ObjectSet {
		r.ObjectID = in.ObjectID
	}
	if actor.IsAdmin() {
		if in.Status != nil {
			if !ValidStatus(*in.Status) {
				return nil, invalidField("status", "unknown status value")
			}
			r.Status = *in.Status
		}
		if in.Earnings != nil {
			r.Earnings = *in.Earnings
		}
	}
	if in.WorkLogSet {
		if err := s.replaceWorkLog(ctx, r, in.WorkLog); err != nil {
			return nil, err
		}
	}
	r.Completed = r.Status == StatusCompleted

	if err := s.store.Save(ctx, r, in.WorkLogSet); err != nil {
		return nil, err
	}
	return r, nil
}

// Submit — подача отчёта (complete_work). Заработок всегда пересчитывается
// по присланному журналу; статус не-админа зажимается в
// {draft, pending_approval}, по умолчанию pending_approval.
func (s *Service) Submit(ctx context.Context, actor Actor, in SubmitInput) (*Report, error) {
	if err := validateTarget(in.UserID, in.Date); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.ID != in.UserID {
		return nil, ErrAccessDenied
	}

	status := StatusPendingApproval
	if in.Status != nil {
		status = *in.Status
	}
	if !actor.IsAdmin() {
		if status != StatusDraft && status != StatusPendingApproval {
			status = StatusPendingApproval
		}
	} else if !ValidStatus(status) {
		return nil, invalidField("status", "unknown status value")
	}

	entries, err := normalizeEntries(in.WorkLog)
	if err != nil {
		return nil, err
	}
	total, err := s.recalc(ctx, entries)
	if err != nil {
		return nil, err
	}

	r, err := s.store.GetByUserDate(ctx, in.UserID, in.Date)
	if err != nil {
		return nil, err
	}
	if r == nil {
		r = &Report{UserID: in.UserID, Date: in.Date}
	} else if !CanEdit(r, actor) {
		return nil, ErrAccessDenied
	}

	r.ObjectID = in.ObjectID
	r.Status = status
	r.Earnings = total
	r.WorkLog = entries
	r.Completed = status == StatusCompleted

	if err := s.store.Save(ctx, r, true); err != nil {
		return nil, err
	}
	metrics.ReportTransitions.WithLabelValues("submit").Inc()
	return r, nil
}

// Edit — правка отчёта по id монтажником или админом.
func (s *Service) Edit(ctx context.Context, actor Actor, id int64, in EditInput) (*Report, error) {
	r, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrNotFound
	}
	if !CanEdit(r, actor) {
		return nil, ErrAccessDenied
	}

	if in.ObjectSet {
		r.ObjectID = in.ObjectID
	}
	if in.WorkLogSet {
		if err := s.replaceWorkLog(ctx, r, in.WorkLog); err != nil {
			return nil, err
		}
	}
	// Явный earnings от админа перекрывает пересчитанный из журнала.
	if in.Earnings != nil && actor.IsAdmin() {
		r.Earnings = *in.Earnings
	}
	if in.Status != nil {
		st := *in.Status
		if !actor.IsAdmin() {
			if st != StatusDraft && st != StatusPendingApproval {
				return nil, invalidField("status", "installer can only save draft or submit for approval")
			}
		} else if !ValidStatus(st) {
			return nil, invalidField("status", "unknown status value")
		}
		r.Status = st
	}
	r.Completed = r.Status == StatusCompleted

	if err := s.store.Save(ctx, r, in.WorkLogSet); err != nil {
		return nil, err
	}
	return r, nil
}

// Approve: pending_approval → approved_waiting_payment. Только админ.
// Перед фиксацией админ может поправить журнал (с коэффициентами) и итог.
func (s *Service) Approve(ctx context.Context, actor Actor, id int64, in ApproveInput) (*Report, error) {
	if !actor.IsAdmin() {
		return nil, ErrAccessDenied
	}
	r, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrNotFound
	}
	if r.Status != StatusPendingApproval {
		return nil, &TransitionError{Op: "approve", Current: r.Status, Required: StatusPendingApproval}
	}

	if in.WorkLogSet {
		if err := s.replaceWorkLog(ctx, r, in.WorkLog); err != nil {
			return nil, err
		}
	}
	if in.Earnings != nil {
		r.Earnings = *in.Earnings
	}
	r.Status = StatusApprovedWaitingPayment
	r.Completed = false

	if err := s.store.Save(ctx, r, in.WorkLogSet); err != nil {
		return nil, err
	}
	metrics.ReportTransitions.WithLabelValues("approve").Inc()
	return r, nil
}

// Reject: pending_approval → draft. Только админ.
func (s *Service) Reject(ctx context.Context, actor Actor, id int64) (*Report, error) {
	if !actor.IsAdmin() {
		return nil, ErrAccessDenied
	}
	r, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrNotFound
	}
	if r.Status != StatusPendingApproval {
		return nil, &TransitionError{Op: "reject", Current: r.Status, Required: StatusPendingApproval}
	}

	r.Status = StatusDraft
	r.Completed = false
	if err := s.store.Save(ctx, r, false); err != nil {
		return nil, err
	}
	metrics.ReportTransitions.WithLabelValues("reject").Inc()
	return r, nil
}

// MarkPaid: approved_waiting_payment → paid_waiting_confirmation. Только админ.
func (s *Service) MarkPaid(ctx context.Context, actor Actor, id int64) (*Report, error) {
	if !actor.IsAdmin() {
		return nil, ErrAccessDenied
	}
	r, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrNotFound
	}
	if r.Status != StatusApprovedWaitingPayment {
		return nil, &TransitionError{Op: "mark as paid", Current: r.Status, Required: StatusApprovedWaitingPayment}
	}

	r.Status = StatusPaidWaitingConfirmation
	r.Completed = false
	if err := s.store.Save(ctx, r, false); err != nil {
		return nil, err
	}
	metrics.ReportTransitions.WithLabelValues("mark_paid").Inc()
	return r, nil
}

// ConfirmPayment: paid_waiting_confirmation → completed. Владелец или админ.
func (s *Service) ConfirmPayment(ctx context.Context, actor Actor, id int64) (*Report, error) {
	r, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrNotFound
	}
	if !actor.IsAdmin() && r.UserID != actor.ID {
		return nil, ErrAccessDenied
	}
	if r.Status != StatusPaidWaitingConfirmation {
		return nil, &TransitionError{Op: "confirm payment for", Current: r.Status, Required: StatusPaidWaitingConfirmation}
	}

	r.Status = StatusCompleted
	r.Completed = true
	if err := s.store.Save(ctx, r, false); err != nil {
		return nil, err
	}
	metrics.ReportTransitions.WithLabelValues("confirm_payment").Inc()
	return r, nil
}

func (s *Service) List(ctx context.Context, userID *int64) ([]Report, error) {
	if userID != nil && *userID <= 0 {
		return nil, invalidField("userId", "must be a positive integer")
	}
	return s.store.List(ctx, userID, nil)
}

// Pending — отчёты в ожидании утверждения. Только админ.
func (s *Service) Pending(ctx context.Context, actor Actor) ([]Report, error) {
	if !actor.IsAdmin() {
		return nil, ErrAccessDenied
	}
	st := StatusPendingApproval
	return s.store.List(ctx, nil, &st)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Report, error) {
	r, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrNotFound
	}
	return r, nil
}
