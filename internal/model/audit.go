package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionApplyTraining       = "APPLY_TRAINING"
	ActionApproveApplication  = "APPROVE_APPLICATION"
	ActionRejectApplication   = "REJECT_APPLICATION"
	ActionCompleteApplication = "COMPLETE_APPLICATION"
	ActionWithdrawApplication = "WITHDRAW_APPLICATION"

	ActionRequestPayment  = "REQUEST_PAYMENT"
	ActionApprovePayment  = "APPROVE_PAYMENT"
	ActionRejectPayment   = "REJECT_PAYMENT"
	ActionCompletePayment = "COMPLETE_PAYMENT"

	ActionCreateContract    = "CREATE_CONTRACT"
	ActionActivateContract  = "ACTIVATE_CONTRACT"
	ActionCompleteContract  = "COMPLETE_CONTRACT"
	ActionTerminateContract = "TERMINATE_CONTRACT"

	ActionCreateWarranty     = "CREATE_WARRANTY"
	ActionUpdateWarranty     = "UPDATE_WARRANTY"
	ActionExpireWarranty     = "EXPIRE_WARRANTY"
	ActionClaimWarranty      = "CLAIM_WARRANTY"
	ActionIssueCertificate   = "ISSUE_CERTIFICATE"
	ActionSetPaymentRate     = "SET_PAYMENT_RATE"
	ActionAssignTrainerLevel = "ASSIGN_TRAINER_LEVEL"
	ActionRegisterUser       = "REGISTER_USER"
)

// AuditLog tracks who changed what and when for every workflow mutation
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // nil for scheduled jobs
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:text" json:"details"` // JSON payload
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
