package models

import "time"

// PaymentEvent records a processed provider webhook event. The primary key on
// EventID is what makes ReconcileEvent idempotent: the row is inserted in the
// same transaction as the payment-status change, so a replayed event hits the
// unique constraint and is dropped.
type PaymentEvent struct {
	EventID     string    `gorm:"primaryKey" json:"event_id"`
	OrderID     uint      `gorm:"index" json:"order_id"`
	Type        string    `json:"type"`
	ProcessedAt time.Time `json:"processed_at"`
}
