// Package ledgerstore implementa el ledger en memoria y la cadena de hashes compartida
// por todos los backends.
package ledgerstore

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"strings"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// GenesisHash prev_hash de la primera entrada del ledger.
var GenesisHash = strings.Repeat("0", sha256.Size*2)

// ChainHash calcula SHA-256(prevHash ‖ len(key) ‖ key ‖ value) en hex.
func ChainHash(prevHash, key string, value []byte) string {
	h := sha256.New()
	h.Write([]byte(prevHash))
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(key)))
	h.Write(n[:])
	h.Write([]byte(key))
	h.Write(value)
	return hex.EncodeToString(h.Sum(nil))
}

// NewProof arma la prueba de una entrada recalculando su hash.
func NewProof(seq int64, key string, value []byte, prevHash, hash string) entity.Proof {
	return entity.Proof{
		Key:      key,
		Sequence: seq,
		Hash:     hash,
		PrevHash: prevHash,
		Verified: ChainHash(prevHash, key, value) == hash,
	}
}
