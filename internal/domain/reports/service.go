package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/smartdom/crm-bot/internal/domain/objects"
	"github.com/smartdom/crm-bot/internal/domain/schedule"
	"github.com/smartdom/crm-bot/internal/domain/users"
)

// Подпись удалённой позиции прайса в отчёте.
const removedItemName = "Услуга удалена"

var (
	ErrUserNotFound       = errors.New("report user not found")
	ErrChannelUnavailable = errors.New("report channel unavailable")
)

type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*users.User, error)
}

type ReportSource interface {
	List(ctx context.Context, userID *int64, status *schedule.Status) ([]schedule.Report, error)
}

type ObjectDirectory interface {
	GetByID(ctx context.Context, id int64) (*objects.Object, error)
}

type PriceNames interface {
	NamesByIDs(ctx context.Context, ids []int64) (map[int64]string, error)
}

type Service struct {
	log     *slog.Logger
	users   UserDirectory
	source  ReportSource
	objects ObjectDirectory
	prices  PriceNames
	client  *http.Client
	url     string
	secret  string
}

func NewService(log *slog.Logger, u UserDirectory, src ReportSource, obj ObjectDirectory, pr PriceNames, internalURL, secret string) *Service {
	return &Service{
		log:     log,
		users:   u,
		source:  src,
		objects: obj,
		prices:  pr,
		client:  &http.Client{Timeout: 10 * time.Second},
		url:     internalURL,
		secret:  secret,
	}
}

// RequestUserReport собирает payload по всем отчётам пользователя и
// отдаёт его боту; рендеринг документа — не наша забота.
func (s *Service) RequestUserReport(ctx context.Context, userID, adminTelegramID int64) error {
	p, err := s.Build(ctx, userID, adminTelegramID)
	if err != nil {
		return err
	}
	return s.send(ctx, p)
}

func (s *Service) Build(ctx context.Context, userID, adminTelegramID int64) (*Payload, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	days, err := s.source.List(ctx, &userID, nil)
	if err != nil {
		return nil, err
	}

	// Имена позиций прайса — одним батчем на весь отчёт.
	var itemIDs []int64
	for _, d := range days {
		itemIDs = append(itemIDs, schedule.ReferencedItemIDs(d.WorkLog)...)
	}
	names, err := s.prices.NamesByIDs(ctx, itemIDs)
	if err != nil {
		return nil, err
	}

	objectCache := map[int64]*objects.Object{}
	var total int64
	entries := make([]DayEntry, 0, len(days))
	for _, d := range days {
		total += d.Earnings

		var obj ObjectInfo
		if d.ObjectID != nil {
			o, ok := objectCache[*d.ObjectID]
			if !ok {
				o, err = s.objects.GetByID(ctx, *d.ObjectID)
				if err != nil {
					return nil, err
				}
				objectCache[*d.ObjectID] = o
			}
			if o != nil {
				obj = ObjectInfo{Name: &o.Name, Address: &o.Address}
			}
		}

		items := make([]WorkItem, 0, len(d.WorkLog))
		for _, e := range d.WorkLog {
			name, ok := names[e.PriceItemID]
			if !ok {
				name = removedItemName
			}
			items = append(items, WorkItem{Name: name, Quantity: e.Quantity})
		}

		entries = append(entries, DayEntry{
			Date:     d.Date,
			Status:   string(d.Status),
			Earnings: d.Earnings,
			Object:   obj,
			WorkLog:  items,
		})
	}

	return &Payload{
		GeneratedAt:     time.Now().UTC().Format(time.RFC3339),
		AdminTelegramID: adminTelegramID,
		User:            UserInfo{ID: u.ID, Name: u.Name, Role: string(u.Role)},
		Summary:         Summary{TotalDays: len(entries), TotalEarnings: total},
		Days:            entries,
	}, nil
}

func (s *Service) send(ctx context.Context, p *Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url+"/internal/report/user", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Report-Secret", s.secret)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrChannelUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: bot returned %s", ErrChannelUnavailable, resp.Status)
	}
	return nil
}
