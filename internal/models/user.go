// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// handleFallbackLen is how much of the id stands in for a missing username.
const handleFallbackLen = 8

// User represents an account. Username is optional; Handle always has a value.
type User struct {
	ID        string                      `gorm:"type:varchar(36);primaryKey" json:"id"`
	Username  *string                     `gorm:"type:varchar(30);uniqueIndex" json:"username"`
	Email     string                      `gorm:"type:varchar(255);uniqueIndex;not null" json:"-"`
	Password  string                      `gorm:"not null" json:"-"`
	Name      string                      `gorm:"type:varchar(50);not null" json:"name"`
	Bio       string                      `gorm:"type:varchar(160)" json:"bio"`
	Location  string                      `gorm:"type:varchar(30)" json:"location"`
	Website   string                      `gorm:"type:varchar(100)" json:"website"`
	Image     string                      `json:"image"`
	Banner    string                      `json:"banner"`
	Verified  bool                        `gorm:"not null;default:false" json:"verified"`
	Badges    datatypes.JSONSlice[string] `json:"badges"`
	IsAdmin   bool                        `gorm:"not null;default:false;index" json:"is_admin"`
	CreatedAt time.Time                   `json:"created_at"`
	UpdatedAt time.Time                   `json:"updated_at"`

	Handle         string `gorm:"-" json:"handle"`
	FollowersCount int64  `gorm:"->;-:migration" json:"followers_count"`
	FollowingCount int64  `gorm:"->;-:migration" json:"following_count"`
	TweetsCount    int64  `gorm:"->;-:migration" json:"tweets_count"`
}

// DisplayHandle returns the username, or an id prefix when no username is set.
func (u *User) DisplayHandle() string {
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	if len(u.ID) > handleFallbackLen {
		return u.ID[:handleFallbackLen]
	}
	return u.ID
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Badges == nil {
		u.Badges = datatypes.JSONSlice[string]{}
	}
	return nil
}

func (u *User) AfterCreate(tx *gorm.DB) error {
	u.Handle = u.DisplayHandle()
	return nil
}

func (u *User) AfterSave(tx *gorm.DB) error {
	u.Handle = u.DisplayHandle()
	return nil
}

func (u *User) AfterFind(tx *gorm.DB) error {
	u.Handle = u.DisplayHandle()
	return nil
}

// Account is the caller's own view of their record.
type Account struct {
	*User
	Email string `json:"email"`
}

// NewAccount exposes the email that the public JSON hides.
func NewAccount(u *User) *Account {
	return &Account{User: u, Email: u.Email}
}
