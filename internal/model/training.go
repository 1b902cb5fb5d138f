package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TrainingType describes a kind of training program
type TrainingType struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	DesignedFor string    `gorm:"type:varchar(100)" json:"designed_for"` // target audience
	Requirement string    `gorm:"type:text" json:"requirement"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (t *TrainingType) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Training is one scheduled session of a training type, conducted by a trainer
type Training struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Code           string        `gorm:"column:training_id;type:varchar(50);uniqueIndex;not null" json:"training_id"` // e.g. TR-001
	TrainingTypeID uuid.UUID     `gorm:"type:uuid;not null;index" json:"training_type_id"`
	TrainingType   *TrainingType `gorm:"foreignKey:TrainingTypeID" json:"training_type,omitempty"`
	GivenByID      uuid.UUID     `gorm:"type:uuid;not null;index" json:"given_by_id"`
	GivenBy        *User         `gorm:"foreignKey:GivenByID" json:"given_by,omitempty"`
	GivenDate      time.Time     `gorm:"type:date;not null" json:"given_date"` // start date
	EndDate        time.Time     `gorm:"type:date;not null" json:"end_date"`
	Location       string        `gorm:"type:varchar(200)" json:"location"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func (t *Training) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// ApplicationStatus is the lifecycle state of a TrainingApplication
type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationApproved  ApplicationStatus = "approved"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationCompleted ApplicationStatus = "completed"
	ApplicationWithdrawn ApplicationStatus = "withdrawn"
)

// TrainingApplication is a trainer's request to attend a training.
// The (trainer, training) pair is unique whatever the status.
type TrainingApplication struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	TrainingID uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_application_trainer_training,priority:2" json:"training_id"`
	Training   *Training         `gorm:"foreignKey:TrainingID" json:"training,omitempty"`
	TrainerID  uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_application_trainer_training,priority:1" json:"trainer_id"`
	Trainer    *User             `gorm:"foreignKey:TrainerID" json:"trainer,omitempty"`
	Status     ApplicationStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	AppliedAt  time.Time         `gorm:"autoCreateTime" json:"applied_at"`
	ReviewedBy *uuid.UUID        `gorm:"type:uuid" json:"reviewed_by"`
	ReviewedAt *time.Time        `json:"reviewed_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func (a *TrainingApplication) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Certificate attests that a user took part in a training
type Certificate struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CertificateID string    `gorm:"<-:create;type:varchar(50);uniqueIndex;not null" json:"certificate_id"`
	CertifiedID   uuid.UUID `gorm:"type:uuid;not null;index" json:"certified_id"`
	Certified     *User     `gorm:"foreignKey:CertifiedID" json:"certified,omitempty"`
	TrainingID    uuid.UUID `gorm:"type:uuid;not null;index" json:"training_id"`
	Training      *Training `gorm:"foreignKey:TrainingID" json:"training,omitempty"`
	GivenDate     time.Time `gorm:"type:date;not null" json:"given_date"`
	CreatedAt     time.Time `json:"created_at"`
}

func (c *Certificate) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CertificateID == "" {
		c.CertificateID = uuid.NewString()
	}
	return nil
}

// Innovator is a person outside the user base who submits innovations
type Innovator struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email       string    `gorm:"type:varchar(255);not null" json:"email"`
	FirstName   string    `gorm:"type:varchar(150);not null" json:"first_name"`
	MiddleName  string    `gorm:"type:varchar(150)" json:"middle_name"`
	LastName    string    `gorm:"type:varchar(150);not null" json:"last_name"`
	Sex         Sex       `gorm:"type:varchar(10);not null" json:"sex"`
	PhoneNumber string    `gorm:"type:varchar(15)" json:"phone_number"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (i *Innovator) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Innovation is an idea submitted by an innovator
type Innovation struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	InnovatorID uuid.UUID  `gorm:"type:uuid;not null;index" json:"innovator_id"`
	Innovator   *Innovator `gorm:"foreignKey:InnovatorID" json:"innovator,omitempty"`
	Title       string     `gorm:"type:varchar(200);not null" json:"title"`
	Description string     `gorm:"type:text;not null" json:"description"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (i *Innovation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
