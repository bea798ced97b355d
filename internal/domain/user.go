package domain

import (
	"time"
)

// User is the identity referenced by projects (manager), tasks (beneficiary)
// and payments. Credentials are issued by an external collaborator; this
// backend only resolves opaque bearer tokens to a user id.
type User struct {
	ID        uint      `gorm:"column:id;primaryKey" json:"id"`
	Username  string    `gorm:"column:username;size:150;not null;uniqueIndex" json:"username"`
	Pubkey    string    `gorm:"column:pubkey;size:66" json:"pubkey,omitempty"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}
