package bot

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/smartdom/crm-bot/internal/domain/reports"
)

func TestBuildUserReportXLSX(t *testing.T) {
	name := "Коттедж Лесной"
	addr := "ул. Лесная, 7"
	p := &reports.Payload{
		GeneratedAt:     "2026-08-23T10:00:00Z",
		AdminTelegramID: 100,
		User:            reports.UserInfo{ID: 2, Name: "Пётр Смирнов", Role: "installer"},
		Summary:         reports.Summary{TotalDays: 1, TotalEarnings: 1000},
		Days: []reports.DayEntry{
			{
				Date:     "2026-08-20",
				Status:   "completed",
				Earnings: 1000,
				Object:   reports.ObjectInfo{Name: &name, Address: &addr},
				WorkLog: []reports.WorkItem{
					{Name: "Монтаж датчика движения", Quantity: 2},
				},
			},
		},
	}

	data, err := buildUserReportXLSX(p)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.ElementsMatch(t, []string{"Сводка", "История"}, f.GetSheetList())

	v, err := f.GetCellValue("Сводка", "B5")
	require.NoError(t, err)
	assert.Equal(t, "1000", v)

	st, err := f.GetCellValue("История", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Завершён", st)

	works, err := f.GetCellValue("История", "E2")
	require.NoError(t, err)
	assert.Equal(t, "Монтаж датчика движения ×2", works)
}

func TestStatusRU_UnknownPassthrough(t *testing.T) {
	assert.Equal(t, "Черновик", statusRU("draft"))
	assert.Equal(t, "weird", statusRU("weird"))
}
