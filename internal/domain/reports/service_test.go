package reports

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartdom/crm-bot/internal/domain/objects"
	"github.com/smartdom/crm-bot/internal/domain/schedule"
	"github.com/smartdom/crm-bot/internal/domain/users"
)

type fakeUsers map[int64]*users.User

func (f fakeUsers) GetByID(_ context.Context, id int64) (*users.User, error) { return f[id], nil }

type fakeSource []schedule.Report

func (f fakeSource) List(_ context.Context, userID *int64, _ *schedule.Status) ([]schedule.Report, error) {
	var out []schedule.Report
	for _, r := range f {
		if userID == nil || r.UserID == *userID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeObjects map[int64]*objects.Object

func (f fakeObjects) GetByID(_ context.Context, id int64) (*objects.Object, error) { return f[id], nil }

type fakeNames map[int64]string

func (f fakeNames) NamesByIDs(_ context.Context, ids []int64) (map[int64]string, error) {
	out := map[int64]string{}
	for _, id := range ids {
		if n, ok := f[id]; ok {
			out[id] = n
		}
	}
	return out, nil
}

func testData() (fakeUsers, fakeSource, fakeObjects, fakeNames) {
	objID := int64(5)
	u := fakeUsers{2: {ID: 2, TelegramID: 200, Name: "Пётр Смирнов", Role: users.RoleInstaller}}
	src := fakeSource{
		{
			ID: 1, UserID: 2, Date: "2026-08-20", ObjectID: &objID,
			Status: schedule.StatusCompleted, Earnings: 1000, Completed: true,
			WorkLog: []schedule.WorkLogEntry{
				{PriceItemID: 3, Quantity: 2, Coefficient: 1.0},
				{PriceItemID: 9, Quantity: 1, Coefficient: 1.0}, // удалённая позиция
			},
		},
		{
			ID: 2, UserID: 2, Date: "2026-08-21",
			Status: schedule.StatusPendingApproval, Earnings: 450,
		},
	}
	obj := fakeObjects{5: {ID: 5, Name: "Коттедж Лесной", Address: "ул. Лесная, 7"}}
	names := fakeNames{3: "Монтаж датчика движения"}
	return u, src, obj, names
}

func TestBuild_PayloadShape(t *testing.T) {
	u, src, obj, names := testData()
	svc := NewService(slog.Default(), u, src, obj, names, "http://unused", "s")

	p, err := svc.Build(context.Background(), 2, 100)
	require.NoError(t, err)

	assert.Equal(t, int64(100), p.AdminTelegramID)
	assert.Equal(t, "Пётр Смирнов", p.User.Name)
	assert.Equal(t, 2, p.Summary.TotalDays)
	assert.Equal(t, int64(1450), p.Summary.TotalEarnings)

	day := p.Days[0]
	require.NotNil(t, day.Object.Name)
	assert.Equal(t, "Коттедж Лесной", *day.Object.Name)
	require.Len(t, day.WorkLog, 2)
	assert.Equal(t, "Монтаж датчика движения", day.WorkLog[0].Name)
	assert.Equal(t, "Услуга удалена", day.WorkLog[1].Name)

	// День без объекта — object с null-полями.
	assert.Nil(t, p.Days[1].Object.Name)
}

func TestBuild_UserNotFound(t *testing.T) {
	u, src, obj, names := testData()
	svc := NewService(slog.Default(), u, src, obj, names, "http://unused", "s")

	_, err := svc.Build(context.Background(), 404, 100)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRequestUserReport_SendsSignedPayload(t *testing.T) {
	u, src, obj, names := testData()

	var gotSecret string
	var gotPayload Payload
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.Header.Get("X-Report-Secret")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		assert.Equal(t, "/internal/report/user", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	svc := NewService(slog.Default(), u, src, obj, names, ts.URL, "top-secret")
	require.NoError(t, svc.RequestUserReport(context.Background(), 2, 100))

	assert.Equal(t, "top-secret", gotSecret)
	assert.Equal(t, int64(100), gotPayload.AdminTelegramID)
	assert.Equal(t, int64(1450), gotPayload.Summary.TotalEarnings)
}

func TestRequestUserReport_BotDown(t *testing.T) {
	u, src, obj, names := testData()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	svc := NewService(slog.Default(), u, src, obj, names, ts.URL, "s")
	err := svc.RequestUserReport(context.Background(), 2, 100)
	assert.ErrorIs(t, err, ErrChannelUnavailable)
}
