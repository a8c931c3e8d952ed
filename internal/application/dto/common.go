package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=0,max=500"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// Window recorta [Offset, Offset+Limit) a una longitud n.
func (p PageRequest) Window(n int) (from, to int) {
	from = min(p.Offset, n)
	to = min(from+p.Limit, n)
	return from, to
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// ProofResponse prueba de integridad devuelta por el ledger.
type ProofResponse struct {
	Key      string `json:"key"`
	Sequence int64  `json:"sequence"`
	Hash     string `json:"hash"`
	PrevHash string `json:"prev_hash"`
	Verified bool   `json:"verified"`
}
