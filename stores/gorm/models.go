package gorm

import (
	"time"

	"github.com/panyam/whispr"
)

// UserModel is the GORM model for users. Username and GoogleID are
// pointers so that accounts holding only one kind of identity do not
// collide on the unique indexes.
type UserModel struct {
	ID           string  `gorm:"primaryKey;size:64"`
	Username     *string `gorm:"uniqueIndex;size:255"`
	PasswordHash *string `gorm:"size:128"`
	GoogleID     *string `gorm:"uniqueIndex;size:255"`
	Secret       *string
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (UserModel) TableName() string {
	return "users"
}

func (m *UserModel) ToUser() *whispr.User {
	user := &whispr.User{
		ID:        m.ID,
		Secret:    m.Secret,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.Username != nil {
		user.Username = *m.Username
	}
	if m.PasswordHash != nil {
		user.PasswordHash = *m.PasswordHash
	}
	if m.GoogleID != nil {
		user.GoogleID = *m.GoogleID
	}
	return user
}
