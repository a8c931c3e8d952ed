package dto

// AuditEntryResponse entrada de la bitácora.
type AuditEntryResponse struct {
	ID         string            `json:"id"`
	Action     string            `json:"action"`
	Resource   string            `json:"resource"`
	ResourceID string            `json:"resource_id"`
	Actor      string            `json:"actor"`
	Outcome    string            `json:"outcome"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Timestamp  string            `json:"timestamp"`
}

// AuditListResponse página de la bitácora, más reciente primero.
type AuditListResponse struct {
	Page    PageResponse         `json:"page"`
	Entries []AuditEntryResponse `json:"entries"`
}
