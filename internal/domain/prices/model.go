package prices

import "time"

// Item — позиция прайс-листа. Цена в минорных единицах (рублях без копеек).
type Item struct {
	ID          int64
	Category    string
	Name        string
	Price       int64
	Coefficient float64
	CreatedAt   time.Time
}
