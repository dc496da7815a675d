package core

import "time"

const (
	ActionCreated      = "CREATED"
	ActionUpdated      = "UPDATED"
	ActionDeleted      = "DELETED"
	ActionCreatedBatch = "CREATED_BATCH"
	ActionCopied       = "COPIED"

	EntityExpense = "EXPENSE"
	EntityIncome  = "INCOME"
	EntityBudget  = "BUDGET"
)

// ActivityEvent records one write performed by a user.
type ActivityEvent struct {
	ID         string    `json:"id,omitempty"`
	UserID     string    `json:"userId"`
	Action     string    `json:"action"`
	EntityType string    `json:"entityType"`
	EntityID   string    `json:"entityId"`
	Timestamp  time.Time `json:"timestamp"`
}

// ActivityFilter narrows an activity log query. Zero values mean "any".
type ActivityFilter struct {
	EntityType string
	From       time.Time
	To         time.Time
}
