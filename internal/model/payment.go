package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentRate is one row of the rate table: a trainer level and its per-day amount
type PaymentRate struct {
	Level     string          `gorm:"type:varchar(15);primaryKey" json:"level"`
	PerDay    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"per_day"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TrainerLevel assigns exactly one rate level to a trainer
type TrainerLevel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TrainerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"trainer_id"`
	Trainer   *User     `gorm:"foreignKey:TrainerID" json:"trainer,omitempty"`
	Level     string    `gorm:"type:varchar(15);not null;index" json:"level"` // PaymentRate.Level
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (l *TrainerLevel) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// PaymentStatus is the lifecycle state of a Payment
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentApproved  PaymentStatus = "approved"
	PaymentRejected  PaymentStatus = "rejected"
	PaymentCompleted PaymentStatus = "completed"
)

// Payment is a trainer's request to be paid for a training.
// Reason holds the training code; (requested_by, reason) is unique.
type Payment struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ReceiptID   string          `gorm:"<-:create;type:varchar(50);uniqueIndex;not null" json:"receipt_id"`
	RequestedBy uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_payment_requester_reason,priority:1" json:"requested_by"`
	Requester   *User           `gorm:"foreignKey:RequestedBy" json:"requester,omitempty"`
	ApprovedBy  *uuid.UUID      `gorm:"type:uuid" json:"approved_by"`
	Approver    *User           `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`
	ApprovedAt  *time.Time      `json:"approved_at"`
	Reason      string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_payment_requester_reason,priority:2" json:"reason"`
	TrainingID  *uuid.UUID      `gorm:"type:uuid;index" json:"training_id"`
	Status      PaymentStatus   `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"amount"`
	ServiceDays int             `gorm:"not null;default:0" json:"service_days"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.ReceiptID == "" {
		p.ReceiptID = uuid.NewString()
	}
	return nil
}
