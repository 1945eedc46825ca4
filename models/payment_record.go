// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"time"
)

type PaymentStatus string

const (
	PaymentSucceeded PaymentStatus = "SUCCEEDED"
)

// PaymentRecord is the append-only payment ledger. One row per verified
// payment, keyed by the vendor payment ID; rows are never updated or deleted.
// The unique index on PaymentID is what makes verification idempotent under
// duplicate or concurrent delivery.
type PaymentRecord struct {
	ID          uint          `gorm:"primaryKey"`
	PaymentID   string        `gorm:"size:64;not null;uniqueIndex"`
	ReferenceID string        `gorm:"size:64;not null;index"`
	PlanName    string        `gorm:"size:50;not null"`
	Amount      int64         `gorm:"not null"`
	Currency    string        `gorm:"size:10;not null;default:'INR'"`
	Status      PaymentStatus `gorm:"size:20;not null"`
	CreatedAt   time.Time
	UserID      uint `gorm:"index"`
	User        User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func init() {
	AllModels = append(AllModels, &PaymentRecord{})
}
