package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleManager    UserRole = "manager"
	RoleTechnician UserRole = "technician"
	RoleReporter   UserRole = "reporter"
)

type User struct {
	ID        string         `gorm:"primaryKey" json:"id"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	FirstName string         `gorm:"not null" json:"firstName"`
	LastName  string         `gorm:"not null" json:"lastName"`
	Phone     string         `json:"phone"`
	Role      UserRole       `gorm:"default:technician" json:"role"`
	Active    bool           `gorm:"default:true" json:"active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// NotificationPrefs gates the delivery channels for one user. Stored in the
// local cache, not in Postgres: preferences are device-local UI state.
type NotificationPrefs struct {
	PushEnabled      bool `json:"pushEnabled"`
	SMSEnabled       bool `json:"smsEnabled"`
	EmailEnabled     bool `json:"emailEnabled"`
	HighPriorityOnly bool `json:"highPriorityOnly"`
}

func DefaultNotificationPrefs() NotificationPrefs {
	return NotificationPrefs{PushEnabled: true}
}
