package models

import (
	"errors"
	"time"
)

// PaymentType classifies a proposed spend.
type PaymentType string

const (
	// PaymentAPIFee covers metered API usage.
	PaymentAPIFee PaymentType = "api_fee"
	// PaymentLegalFiling covers government and registry filings.
	PaymentLegalFiling PaymentType = "legal_filing"
	// PaymentSubscription covers recurring service subscriptions.
	PaymentSubscription PaymentType = "subscription"
	// PaymentServiceOrder covers one-off purchased services.
	PaymentServiceOrder PaymentType = "service_order"
	// PaymentAdSpend covers advertising purchases.
	PaymentAdSpend PaymentType = "ad_spend"
	// PaymentHardware covers physical equipment purchases.
	PaymentHardware PaymentType = "hardware"
	// PaymentContractor covers payments to human contractors.
	// This type is permanently forbidden by guardrail policy.
	PaymentContractor PaymentType = "contractor_payment"
)

// Valid returns true if the payment type is a known value.
func (p PaymentType) Valid() bool {
	switch p {
	case PaymentAPIFee, PaymentLegalFiling, PaymentSubscription,
		PaymentServiceOrder, PaymentAdSpend, PaymentHardware, PaymentContractor:
		return true
	default:
		return false
	}
}

// RiskLevel classifies how risky a spend is. Levels are ordered so the
// higher of two signals can be taken with Max.
type RiskLevel int

const (
	// RiskLow is the default for small, non-binding spends.
	RiskLow RiskLevel = iota
	// RiskMedium covers binding commitments regardless of amount.
	RiskMedium
	// RiskHigh covers spends consuming a large share of remaining budget.
	RiskHigh
)

// String returns a human-readable representation of the risk level.
func (r RiskLevel) String() string {
	switch r {
	case RiskLow:
		return "low"
	case RiskMedium:
		return "medium"
	case RiskHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Max returns the higher of the two risk levels.
func (r RiskLevel) Max(other RiskLevel) RiskLevel {
	if other > r {
		return other
	}
	return r
}

// PaymentStatus is the lifecycle state of a payment request.
type PaymentStatus string

const (
	// PaymentPending indicates the request awaits a human decision.
	PaymentPending PaymentStatus = "pending"
	// PaymentApproved indicates a human approved the spend.
	PaymentApproved PaymentStatus = "approved"
	// PaymentRejected indicates a human rejected the spend.
	PaymentRejected PaymentStatus = "rejected"
	// PaymentExpired indicates no decision arrived within the timeout.
	PaymentExpired PaymentStatus = "expired"
)

// Valid returns true if the status is a known value.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentApproved, PaymentRejected, PaymentExpired:
		return true
	default:
		return false
	}
}

// Terminal returns true once the status can no longer change.
// Only Pending -> terminal transitions are legal; a second decision on
// a terminal request is a programming error, not a business condition.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentApproved || s == PaymentRejected || s == PaymentExpired
}

// ErrAlreadyDecided is returned when a decision is applied to a payment
// request that has already left the Pending state.
var ErrAlreadyDecided = errors.New("payment request already decided")

// PaymentRequest is a proposed spend held for an explicit decision.
type PaymentRequest struct {
	// ID is the unique identifier for this request.
	ID string `json:"id"`
	// RequestedBy is the ID of the actor proposing the spend.
	RequestedBy string `json:"requested_by"`
	// Amount is the proposed spend in dollars.
	Amount float64 `json:"amount"`
	// PaymentType classifies the spend.
	PaymentType PaymentType `json:"payment_type"`
	// Description explains what the spend is for.
	Description string `json:"description"`
	// RiskLevel is derived from the amount and payment type.
	RiskLevel RiskLevel `json:"risk_level"`
	// Status is the current lifecycle state.
	Status PaymentStatus `json:"status"`
	// DecisionReason carries the operator's reason, if any.
	DecisionReason string `json:"decision_reason,omitempty"`
	// CreatedAt is when the request was raised.
	CreatedAt time.Time `json:"created_at"`
	// DecidedAt is when the request reached a terminal state.
	DecidedAt *time.Time `json:"decided_at,omitempty"`
}
