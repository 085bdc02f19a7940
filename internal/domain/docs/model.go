package docs

import "time"

type Type string

const (
	TypePDF  Type = "pdf"
	TypeImg  Type = "img"
	TypeText Type = "text"
	TypeLink Type = "link"
)

func ValidType(t Type) bool {
	switch t {
	case TypePDF, TypeImg, TypeText, TypeLink:
		return true
	}
	return false
}

// Doc — элемент базы знаний. ObjectID == nil означает общий документ.
type Doc struct {
	ID        int64
	Title     string
	Type      Type
	URL       string
	Content   string
	ObjectID  *int64
	CreatedAt time.Time
}
