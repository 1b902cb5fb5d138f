package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the single person entity; role-specific listings are filtered queries over it.
type User struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Username    string         `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Email       string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FirstName   string         `gorm:"type:varchar(150)" json:"first_name"`
	MiddleName  string         `gorm:"type:varchar(150)" json:"middle_name"`
	LastName    string         `gorm:"type:varchar(150)" json:"last_name"`
	PhoneNumber string         `gorm:"type:varchar(15)" json:"phone_number"`
	Sex         Sex            `gorm:"type:varchar(10);not null" json:"sex"`
	Role        Role           `gorm:"type:varchar(20);not null;default:'trainee';index" json:"role"`
	Password    string         `gorm:"type:varchar(255);not null" json:"-"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// FullName joins the name parts, skipping an empty middle name.
func (u *User) FullName() string {
	parts := []string{u.FirstName}
	if u.MiddleName != "" {
		parts = append(parts, u.MiddleName)
	}
	parts = append(parts, u.LastName)
	return strings.TrimSpace(strings.Join(parts, " "))
}

// Department groups staff under a head
type Department struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string     `gorm:"type:varchar(100);not null" json:"name"`
	HeadID    *uuid.UUID `gorm:"type:uuid;index" json:"head_id"`
	Head      *User      `gorm:"foreignKey:HeadID" json:"head,omitempty"`
	Service   string     `gorm:"type:text" json:"service"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (d *Department) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
