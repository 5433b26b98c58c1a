package dto

import (
	"time"

	"github.com/google/uuid"
)

// RegisterRequest represents the request to register a company account
type RegisterRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	CompanyName string `json:"company_name" binding:"required"`
	ContactName string `json:"contact_name" binding:"required"`
	Role        string `json:"role" binding:"required"`
}

// LoginRequest represents the request to log in
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents the request to refresh a token pair
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// CreateProjectRequest represents the request to create a procurement project
type CreateProjectRequest struct {
	Title        string    `json:"title" binding:"required"`
	Category     *string   `json:"category"`
	Region       *string   `json:"region"`
	BudgetLimit  *float64  `json:"budget_limit"`
	Requirements *string   `json:"requirements"`
	Deadline     time.Time `json:"deadline" binding:"required"`
}

// AwardRequest represents the request to select a winning bid
type AwardRequest struct {
	BidID uuid.UUID `json:"bid_id" binding:"required"`
}

// SubmitBidRequest represents the request to submit a bid
type SubmitBidRequest struct {
	Price        float64 `json:"price" binding:"required"`
	DeliveryDays int     `json:"delivery_days" binding:"required"`
	Comment      *string `json:"comment"`
}

// RedistributeWeightsRequest represents the request to rebalance scoring weights
type RedistributeWeightsRequest struct {
	Weights struct {
		Price    int `json:"price"`
		Delivery int `json:"delivery"`
		Quality  int `json:"quality"`
	} `json:"weights"`
	EditedKey string `json:"edited_key" binding:"required"`
	NewValue  int    `json:"new_value"`
}

// SeedRequest represents the request to generate demo data
type SeedRequest struct {
	NumBuyers    int `json:"num_buyers"`
	NumSuppliers int `json:"num_suppliers"`
	NumProjects  int `json:"num_projects"`
}
