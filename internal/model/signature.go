package model

import "time"

// Signature records one party's signing action on a contract. Rows are
// immutable; the unique index rejects a second signature by the same signer.
type Signature struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ContractID    uint      `gorm:"not null;uniqueIndex:idx_contract_signer,priority:1" json:"contract_id"`
	SignerID      uint      `gorm:"not null;uniqueIndex:idx_contract_signer,priority:2" json:"signer_id"`
	SignerType    string    `gorm:"type:varchar(20);not null" json:"signer_type"`
	SignatureData string    `gorm:"type:text" json:"signature_data,omitempty"`
	SignedAt      time.Time `json:"signed_at"`
	CreatedAt     time.Time `json:"created_at"`
}
