package directory

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FullName     string     `gorm:"size:255;not null"`
	Email        string     `gorm:"size:255;not null;uniqueIndex"`
	Role         string     `gorm:"type:varchar(30);not null;default:'staff';index:idx_users_role_active"`
	DepartmentID *uuid.UUID `gorm:"type:uuid;index"`
	Active       bool       `gorm:"not null;default:true;index:idx_users_role_active"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

type Department struct {
	ID     uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name   string     `gorm:"size:255;not null"`
	HeadID *uuid.UUID `gorm:"type:uuid"`
	DeanID *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
