package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы заявки поставщика.
const (
	BidStatusSubmitted = "submitted"
	BidStatusAccepted  = "accepted"
	BidStatusRejected  = "rejected"
)

// ValidBidStatuses содержит допустимые статусы заявок.
var ValidBidStatuses = map[string]struct{}{
	BidStatusSubmitted: {},
	BidStatusAccepted:  {},
	BidStatusRejected:  {},
}

// Bid представляет заявку поставщика на проект закупки.
// Поле Score — производное значение: оно пересчитывается при каждом
// изменении весов и никогда не является источником истины.
type Bid struct {
	ID           uuid.UUID `db:"id" json:"id"`
	ProjectID    uuid.UUID `db:"project_id" json:"project_id"`
	SupplierID   uuid.UUID `db:"supplier_id" json:"supplier_id"`
	Price        float64   `db:"price" json:"price"`
	DeliveryDays int       `db:"delivery_days" json:"delivery_days"`
	Comment      *string   `db:"comment" json:"comment,omitempty"`
	Status       string    `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
	Score        *int      `db:"-" json:"score,omitempty"`
}
