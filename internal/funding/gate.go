package funding

import (
	"context"
	"encoding/json"

	"cofilab-backend/internal/database"
	"cofilab-backend/internal/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RawEvent is the inbound funding webhook payload. Numeric fields are
// pointers so an absent key is distinguishable from a zero value.
type RawEvent struct {
	ProjectID      *uint  `json:"project_id"`
	AmountSats     *int64 `json:"amount_sats"`
	ProofHash      string `json:"proof_hash"`
	WalletAddress  string `json:"wallet_address"`
	IsAnonymous    bool   `json:"is_anonymous"`
	IsAmountPublic *bool  `json:"is_amount_public"`
	Signature      string `json:"signature"`
}

// Gate validates inbound funding webhooks and applies verified events to the
// ledger. The secret is injected at construction, never read per call.
type Gate struct {
	DB     *gorm.DB
	Secret string
}

// Ingest checks shape and authenticity, then atomically inserts the
// immutable Funding record and credits the project budget and live balance.
// A replayed payload hits the proof_hash dedupe and is rejected without any
// ledger mutation, so webhook retries are safe.
func (g *Gate) Ingest(ctx context.Context, ev RawEvent) (*domain.Funding, error) {
	if ev.ProjectID == nil || ev.AmountSats == nil || ev.ProofHash == "" ||
		ev.WalletAddress == "" || ev.Signature == "" {
		return nil, ErrMissingFields
	}
	if *ev.AmountSats <= 0 {
		return nil, ErrMissingFields
	}

	if !verifySignature(g.Secret, *ev.ProjectID, *ev.AmountSats, ev.ProofHash, ev.Signature) {
		return nil, ErrInvalidSignature
	}

	raw, _ := json.Marshal(ev)
	isAmountPublic := true
	if ev.IsAmountPublic != nil {
		isAmountPublic = *ev.IsAmountPublic
	}

	record := domain.Funding{
		ProjectID:      *ev.ProjectID,
		WalletAddress:  ev.WalletAddress,
		AmountSats:     *ev.AmountSats,
		ProofHash:      ev.ProofHash,
		IsAnonymous:    ev.IsAnonymous,
		IsAmountPublic: isAmountPublic,
		RawPayload:     datatypes.JSON(raw),
	}

	err := g.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project domain.Project
		if err := database.LockForUpdate(tx).First(&project, *ev.ProjectID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrProjectNotFound
			}
			return err
		}

		var existing domain.Funding
		if err := tx.Where("project_id = ? AND proof_hash = ?", *ev.ProjectID, ev.ProofHash).
			First(&existing).Error; err == nil {
			return ErrDuplicateProof
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		return tx.Model(&domain.Project{}).Where("id = ?", project.ID).Updates(map[string]interface{}{
			"total_budget":    gorm.Expr("total_budget + ?", record.AmountSats),
			"current_balance": gorm.Expr("current_balance + ?", record.AmountSats),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}
