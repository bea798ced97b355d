package domain

import (
	"time"
)

// Project is the unit of funding and reward distribution. Budget only grows
// through verified Funding events; balance only shrinks through settled
// Payments.
type Project struct {
	ID             uint      `gorm:"column:id;primaryKey" json:"id"`
	Name           string    `gorm:"column:name;size:150;not null" json:"name"`
	Description    string    `gorm:"column:description" json:"description"`
	ManagerID      uint      `gorm:"column:manager_id;not null;index" json:"manager_id"`
	Manager        *User     `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
	TotalBudget    int64     `gorm:"column:total_budget;not null;default:0" json:"total_budget"`
	CurrentBalance int64     `gorm:"column:current_balance;not null;default:0" json:"current_balance"`
	IsPublic       bool      `gorm:"column:is_public;not null;default:true" json:"is_public"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`

	Tasks    []Task    `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"tasks,omitempty"`
	Fundings []Funding `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"fundings,omitempty"`
}

func (Project) TableName() string {
	return "projects"
}
