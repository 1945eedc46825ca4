// SPDX-License-Identifier: GPL-3.0-only

package models

import (
	"time"

	"formfill-server/crypto"

	"gorm.io/gorm"
)

var AllModels []any

// FreeFormLimit is the trial quota granted at signup.
const FreeFormLimit = 3

type User struct {
	ID            uint     `gorm:"primaryKey"`
	AccountID     string   `gorm:"size:64;not null;uniqueIndex"`
	Email         string   `gorm:"not null;uniqueIndex"`
	Password      string   `gorm:"not null"`
	PlanType      PlanType `gorm:"size:50;not null;default:'FREE'"`
	FormsUsed     uint     `gorm:"not null;default:0"`
	FormLimit     uint     `gorm:"not null;default:3"`
	PlanExpiresAt *time.Time
	WebhookURL    *string `gorm:"size:2048;default:null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.AccountID == "" {
		user.AccountID, err = crypto.GenerateRandomString("acct_", 16, "hex")
		if err != nil {
			return err
		}
	}
	return
}

// PlanActive reports whether the account's entitlement is currently usable:
// either it never expires or the expiry is still in the future.
func (user *User) PlanActive(now time.Time) bool {
	return user.PlanExpiresAt == nil || user.PlanExpiresAt.After(now)
}

func init() {
	AllModels = append(AllModels, &User{})
}
