package domain

import (
	"strconv"
	"time"
)

// Organization представляет организацию, владеющую командами
type Organization struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	OwnerID   int64     `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// IDString возвращает идентификатор организации в строковом виде
func (o *Organization) IDString() string {
	return strconv.FormatInt(o.ID, 10)
}
