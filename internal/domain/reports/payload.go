package reports

// Payload — контракт внутреннего канала: бэкенд собирает, бот рендерит
// XLSX и отправляет админу. Имена полей совпадают с JSON канала.
type Payload struct {
	GeneratedAt     string     `json:"generatedAt"`
	AdminTelegramID int64      `json:"adminTelegramId"`
	User            UserInfo   `json:"user"`
	Summary         Summary    `json:"summary"`
	Days            []DayEntry `json:"days"`
}

type UserInfo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type Summary struct {
	TotalDays     int   `json:"totalDays"`
	TotalEarnings int64 `json:"totalEarnings"`
}

type DayEntry struct {
	Date     string     `json:"date"`
	Status   string     `json:"status"`
	Earnings int64      `json:"earnings"`
	Object   ObjectInfo `json:"object"`
	WorkLog  []WorkItem `json:"workLog"`
}

type ObjectInfo struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
}

type WorkItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}
