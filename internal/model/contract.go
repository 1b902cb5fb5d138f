package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ContractStatus is the completion state of a Contract
type ContractStatus string

const (
	ContractDraft      ContractStatus = "draft"
	ContractActive     ContractStatus = "active"
	ContractCompleted  ContractStatus = "completed"
	ContractTerminated ContractStatus = "terminated"
)

// Contract is a signed agreement for delivering a training type.
// The document itself lives in external storage; only its URL is kept.
type Contract struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ContractNo     string         `gorm:"<-:create;type:varchar(50);uniqueIndex;not null" json:"contract_no"`
	DocumentURL    string         `gorm:"type:text" json:"document_url"`
	TrainingTypeID uuid.UUID      `gorm:"type:uuid;not null;index" json:"training_type_id"`
	TrainingType   *TrainingType  `gorm:"foreignKey:TrainingTypeID" json:"training_type,omitempty"`
	SignedByID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"signed_by_id"`
	SignedBy       *User          `gorm:"foreignKey:SignedByID" json:"signed_by,omitempty"`
	Completion     ContractStatus `gorm:"type:varchar(20);not null;default:'draft';index" json:"completion"`
	SignedDate     time.Time      `gorm:"type:date;not null" json:"signed_date"`
	EndDate        time.Time      `gorm:"type:date;not null" json:"end_date"`
	Terms          string         `gorm:"type:text" json:"terms_and_conditions"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func (c *Contract) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.ContractNo == "" {
		c.ContractNo = uuid.NewString()
	}
	return nil
}

// WarrantyStatus enum
type WarrantyStatus string

const (
	WarrantyActive  WarrantyStatus = "active"
	WarrantyExpired WarrantyStatus = "expired"
	WarrantyClaimed WarrantyStatus = "claimed"
	WarrantyPending WarrantyStatus = "pending"
)

// WarrantyMoney is a guarantee amount held for a trainee
type WarrantyMoney struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Guarantee    string          `gorm:"type:varchar(100);not null" json:"guarantee"`
	AllowedForID uuid.UUID       `gorm:"type:uuid;not null;index" json:"allowed_for_id"` // beneficiary trainee
	AllowedFor   *User           `gorm:"foreignKey:AllowedForID" json:"allowed_for,omitempty"`
	Amount       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status       WarrantyStatus  `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	ExpiryDate   *time.Time      `gorm:"type:date;index" json:"expiry_date"`
	CreatedAt    time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName keeps the singular-plural form readable
func (WarrantyMoney) TableName() string {
	return "warranty_money"
}

func (w *WarrantyMoney) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
