package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Voucher unlocks conditions and discounts for whoever enters its code.
// The limit caps how many attendees may hold it at once.
type Voucher struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Recipient string         `gorm:"size:64" json:"recipient"`
	Code      string         `gorm:"size:16;unique;not null" json:"code"`
	Limit     int            `gorm:"not null" json:"limit"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// NormaliseVoucherCode upper-cases a code, so lookups are case-insensitive
func NormaliseVoucherCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// BeforeCreate generates a UUID and normalises the code
func (v *Voucher) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	v.Code = NormaliseVoucherCode(v.Code)
	return nil
}

// TableName returns the table name for the Voucher model
func (Voucher) TableName() string {
	return "vouchers"
}
