package entity

// Proof token de integridad que devuelve el ledger por cada put/get/scan.
// Hash = SHA-256(PrevHash ‖ key ‖ value); Verified indica si el hash recalculado coincide.
type Proof struct {
	Key      string
	Sequence int64
	Hash     string
	PrevHash string
	Verified bool
}
