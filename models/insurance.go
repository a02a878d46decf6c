package models

import (
	"time"
)

// Core InsurancePolicy struct
type InsurancePolicy struct {
	ID           string    `json:"id" bson:"_id"`
	UserID       string    `json:"userId" bson:"userId"`
	Provider     string    `json:"provider" bson:"provider"`
	PolicyNumber string    `json:"policyNumber" bson:"policyNumber"`
	HolderName   string    `json:"holderName" bson:"holderName"`
	Status       string    `json:"status" bson:"status"`
	IsVerified   bool      `json:"isVerified" bson:"isVerified"`
	Coverage     Coverage  `json:"coverage" bson:"coverage"`
	ValidFrom    time.Time `json:"validFrom" bson:"validFrom"`
	ValidUpto    time.Time `json:"validUpto" bson:"validUpto"`

	VerifiedAt *time.Time `json:"verifiedAt,omitempty" bson:"verifiedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt" bson:"updatedAt"`
}

type Coverage struct {
	Amount   float64  `json:"amount" bson:"amount"`
	Cashless bool     `json:"cashless" bson:"cashless"`
	Excluded []string `json:"excluded,omitempty" bson:"excluded,omitempty"`
}

// Insurance status constants
const (
	InsuranceStatusActive   = "active"
	InsuranceStatusExpired  = "expired"
	InsuranceStatusPending  = "pending"
	InsuranceStatusRejected = "rejected"
	InsuranceStatusVerified = "verified"
)

// Insurance provider constants
const (
	InsuranceProviderAyushmanBharat = "ayushman_bharat"
	InsuranceProviderAarogyasri     = "aarogyasri"
	InsuranceProviderPrivate        = "private"
	InsuranceProviderNone           = "none"
)

// VerificationResult is the outcome of a provider verification attempt.
type VerificationResult struct {
	Verified bool    `json:"verified"`
	Status   string  `json:"status"`
	Provider string  `json:"provider,omitempty"`
	Coverage float64 `json:"coverage,omitempty"`
	Message  string  `json:"message,omitempty"`
}
