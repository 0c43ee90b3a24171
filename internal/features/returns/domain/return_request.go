package domain

import (
	"time"

	"github.com/google/uuid"
)

// StatusChange records one transition in a return request's lifecycle.
type StatusChange struct {
	// Status is the state entered.
	Status SubmissionStatus `json:"status"`
	// At is when the transition happened.
	At time.Time `json:"at"`
}

// ReturnRequest is the persisted audit record for one submission attempt.
// It embeds the fraud assessment so flagged requests can be reviewed later;
// the eligibility and fraud logic never reads these records back except for
// the per-customer return count used by the frequent-returns indicator.
type ReturnRequest struct {
	// ID is the unique record identifier.
	ID string `json:"id"`
	// TenantID identifies the tenant the request belongs to.
	TenantID string `json:"tenant_id"`
	// OrderID is the parent order of the batch.
	OrderID string `json:"order_id"`
	// Email is the customer email on the order.
	Email string `json:"email"`
	// Items are the submitted return/exchange items after deduplication.
	Items []SubmissionItem `json:"items"`
	// Fraud is the assessment computed for this attempt.
	Fraud FraudAssessment `json:"fraud"`
	// Status is the current state of the request.
	Status SubmissionStatus `json:"status"`
	// StatusHistory records every state the request has been in.
	StatusHistory []StatusChange `json:"status_history"`
	// CreatedAt is when the request was submitted.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the request last changed state.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewReturnRequest creates an audit record for a submission attempt.
func NewReturnRequest(tenantID, orderID, email string, items []SubmissionItem, fraud FraudAssessment, status SubmissionStatus, now time.Time) *ReturnRequest {
	return &ReturnRequest{
		ID:            uuid.NewString(),
		TenantID:      tenantID,
		OrderID:       orderID,
		Email:         email,
		Items:         items,
		Fraud:         fraud,
		Status:        status,
		StatusHistory: []StatusChange{{Status: status, At: now}},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// SetStatus transitions the request to a new state and appends to the history.
func (r *ReturnRequest) SetStatus(status SubmissionStatus, at time.Time) {
	r.Status = status
	r.StatusHistory = append(r.StatusHistory, StatusChange{Status: status, At: at})
	r.UpdatedAt = at
}
