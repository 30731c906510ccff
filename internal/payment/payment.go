package payment

import "time"

// Status is the lifecycle state of one checkout attempt.
//
//	pending --(gateway intent created)--> processing
//	processing --(gateway confirms charge)--> completed
//	pending|processing --(gateway or validation failure)--> failed
//
// completed and failed are terminal.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransitionTo reports whether the state machine permits moving to next.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing || next == StatusFailed
	case StatusProcessing:
		return next == StatusCompleted || next == StatusFailed
	default:
		return false
	}
}

// LineItem is one product line of an order.
type LineItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// Payment is one checkout attempt. ID, OrderID, Amount and Currency are
// immutable after creation; OrderID is the lookup key for updates.
type Payment struct {
	ID               string     `json:"id"`
	OrderID          string     `json:"orderId"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone,omitempty"`
	Address          string     `json:"address"`
	City             string     `json:"city"`
	Country          string     `json:"country"`
	PostalCode       string     `json:"postalCode,omitempty"`
	PaymentMethod    string     `json:"paymentMethod"`
	Status           Status     `json:"paymentStatus"`
	Amount           float64    `json:"amount"`
	Currency         string     `json:"currency"`
	Items            []LineItem `json:"items"`
	GatewayReference string     `json:"gatewayReference,omitempty"`
	FailureReason    string     `json:"failureReason,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}
