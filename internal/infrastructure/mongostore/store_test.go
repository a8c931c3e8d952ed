package mongostore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-ledger/internal/infrastructure/ledgerstore"
)

func TestNextEntry_EncadenaDesdeGenesis(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	first := nextEntry(nil, "product:A", []byte("v1"), now)
	assert.Equal(t, int64(1), first.Seq)
	assert.Equal(t, ledgerstore.GenesisHash, first.PrevHash)
	assert.Equal(t, ledgerstore.ChainHash(ledgerstore.GenesisHash, "product:A", []byte("v1")), first.Hash)

	second := nextEntry(&first, "tx:A:txn_1", []byte("t1"), now)
	assert.Equal(t, int64(2), second.Seq)
	assert.Equal(t, first.Hash, second.PrevHash)
	assert.True(t, ledgerstore.NewProof(second.Seq, second.Key, second.Value, second.PrevHash, second.Hash).Verified)
}
