package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы проекта закупки.
const (
	ProjectStatusOpen    = "open"
	ProjectStatusClosed  = "closed"
	ProjectStatusAwarded = "awarded"
)

// ValidProjectStatuses содержит допустимые статусы проектов.
var ValidProjectStatuses = map[string]struct{}{
	ProjectStatusOpen:    {},
	ProjectStatusClosed:  {},
	ProjectStatusAwarded: {},
}

// projectTransitions описывает разрешённые переходы статусов.
// awarded — терминальный статус, из него переходов нет.
var projectTransitions = map[string]map[string]struct{}{
	ProjectStatusOpen: {
		ProjectStatusClosed:  {},
		ProjectStatusAwarded: {},
	},
	ProjectStatusClosed: {
		ProjectStatusAwarded: {},
	},
	ProjectStatusAwarded: {},
}

// CanTransitProject сообщает, разрешён ли переход проекта из статуса from в to.
// Переход в тот же статус считается разрешённым (no-op).
func CanTransitProject(from, to string) bool {
	if from == to {
		return true
	}
	allowed, ok := projectTransitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// Project описывает проект закупки, открытый для подачи заявок.
type Project struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	BuyerID      uuid.UUID  `db:"buyer_id" json:"buyer_id"`
	Title        string     `db:"title" json:"title"`
	Category     *string    `db:"category" json:"category,omitempty"`
	Region       *string    `db:"region" json:"region,omitempty"`
	BudgetLimit  *float64   `db:"budget_limit" json:"budget_limit,omitempty"`
	Requirements *string    `db:"requirements" json:"requirements,omitempty"`
	Deadline     time.Time  `db:"deadline" json:"deadline"`
	Status       string     `db:"status" json:"status"`
	AwardedBidID *uuid.UUID `db:"awarded_bid_id" json:"awarded_bid_id,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
	BidsCount    *int       `db:"bids_count" json:"bids_count,omitempty"`
}
