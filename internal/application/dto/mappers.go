package dto

import (
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// ToProofResponse nil produce una prueba vacía no verificada.
func ToProofResponse(p *entity.Proof) ProofResponse {
	if p == nil {
		return ProofResponse{}
	}
	return ProofResponse{Key: p.Key, Sequence: p.Sequence, Hash: p.Hash, PrevHash: p.PrevHash, Verified: p.Verified}
}

func ToProductResponse(p *entity.Product) ProductResponse {
	return ProductResponse{
		SKU:             p.SKU,
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price,
		Category:        p.Category,
		Supplier:        p.Supplier,
		InitialQuantity: p.InitialQuantity,
		CreatedAt:       entity.FormatTimestamp(p.CreatedAt),
	}
}

func ToTransactionResponse(tx *entity.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:  tx.ID,
		SKU:            tx.SKU,
		Type:           string(tx.Type),
		QuantityChange: tx.QuantityChange,
		Reason:         tx.Reason,
		PerformedBy:    tx.PerformedBy,
		Timestamp:      entity.FormatTimestamp(tx.Timestamp),
	}
}

func ToUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: entity.FormatTimestamp(u.CreatedAt),
	}
}

func ToAuditEntryResponse(a *entity.AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:         a.ID,
		Action:     a.Action,
		Resource:   a.Resource,
		ResourceID: a.ResourceID,
		Actor:      a.Actor,
		Outcome:    a.Outcome,
		Metadata:   a.Metadata,
		Timestamp:  entity.FormatTimestamp(a.Timestamp),
	}
}
