package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Funding is an immutable append-only record of a verified inbound
// contribution. Never updated or deleted after creation. The unique index on
// (project_id, proof_hash) rejects replayed webhook payloads that would
// otherwise double-credit the budget.
type Funding struct {
	ID             uint           `gorm:"column:id;primaryKey" json:"id"`
	ProjectID      uint           `gorm:"column:project_id;not null;uniqueIndex:idx_funding_project_proof" json:"project_id"`
	WalletAddress  string         `gorm:"column:wallet_address;size:255;not null" json:"wallet_address"`
	AmountSats     int64          `gorm:"column:amount_sats;not null" json:"amount_sats"`
	ProofHash      string         `gorm:"column:proof_hash;size:128;not null;uniqueIndex:idx_funding_project_proof" json:"proof_hash"`
	IsAnonymous    bool           `gorm:"column:is_anonymous;not null;default:false" json:"is_anonymous"`
	IsAmountPublic bool           `gorm:"column:is_amount_public;not null;default:true" json:"is_amount_public"`
	RawPayload     datatypes.JSON `gorm:"column:raw_payload;type:jsonb" json:"-"`
	CreatedAt      time.Time      `gorm:"column:created_at" json:"created_at"`
}

func (Funding) TableName() string {
	return "fundings"
}
