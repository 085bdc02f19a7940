package bot

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/smartdom/crm-bot/internal/domain/reports"
)

func statusRU(s string) string {
	switch s {
	case "draft":
		return "Черновик"
	case "pending_approval":
		return "На утверждении"
	case "approved_waiting_payment":
		return "Утверждён, ждёт оплаты"
	case "paid_waiting_confirmation":
		return "Оплачен, ждёт подтверждения"
	case "completed":
		return "Завершён"
	}
	return s
}

// buildUserReportXLSX рендерит payload бэкенда в книгу из двух листов:
// «Сводка» и «История» с журналом работ по дням.
func buildUserReportXLSX(p *reports.Payload) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const summary = "Сводка"
	const history = "История"

	defaultSheet := f.GetSheetName(f.GetActiveSheetIndex())
	if _, err := f.NewSheet(summary); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(history); err != nil {
		return nil, err
	}
	if defaultSheet != "" && defaultSheet != summary && defaultSheet != history {
		_ = f.DeleteSheet(defaultSheet)
	}

	// Лист «Сводка»
	_ = f.SetCellValue(summary, "A1", fmt.Sprintf("Отчёт по монтажнику: %s", p.User.Name))
	_ = f.MergeCell(summary, "A1", "B1")
	_ = f.SetCellValue(summary, "A2", "Сформирован")
	_ = f.SetCellValue(summary, "B2", p.GeneratedAt)
	_ = f.SetCellValue(summary, "A3", "Роль")
	_ = f.SetCellValue(summary, "B3", p.User.Role)
	_ = f.SetCellValue(summary, "A4", "Всего дней")
	_ = f.SetCellValue(summary, "B4", p.Summary.TotalDays)
	_ = f.SetCellValue(summary, "A5", "Итого заработок")
	_ = f.SetCellValue(summary, "B5", p.Summary.TotalEarnings)

	// Лист «История»
	headers := []string{"Дата", "Статус", "Объект", "Адрес", "Работы", "Заработок"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(history, cell, h)
	}

	row := 2
	for _, d := range p.Days {
		objName, objAddr := "", ""
		if d.Object.Name != nil {
			objName = *d.Object.Name
		}
		if d.Object.Address != nil {
			objAddr = *d.Object.Address
		}

		var works bytes.Buffer
		for i, it := range d.WorkLog {
			if i > 0 {
				works.WriteString("; ")
			}
			fmt.Fprintf(&works, "%s ×%d", it.Name, it.Quantity)
		}

		_ = f.SetCellValue(history, fmt.Sprintf("A%d", row), d.Date)
		_ = f.SetCellValue(history, fmt.Sprintf("B%d", row), statusRU(d.Status))
		_ = f.SetCellValue(history, fmt.Sprintf("C%d", row), objName)
		_ = f.SetCellValue(history, fmt.Sprintf("D%d", row), objAddr)
		_ = f.SetCellValue(history, fmt.Sprintf("E%d", row), works.String())
		_ = f.SetCellValue(history, fmt.Sprintf("F%d", row), d.Earnings)
		row++
	}

	if idx, err := f.GetSheetIndex(summary); err == nil {
		f.SetActiveSheet(idx)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
