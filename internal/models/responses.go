package models

// TicketSearchResult is returned when looking up the owner of a ticket
type TicketSearchResult struct {
	TicketNumber string         `json:"ticketNumber" example:"T1"`
	Account      AccountSummary `json:"account"`
}

// AccountSearchResult is returned when looking up an account by number
type AccountSearchResult struct {
	Account AccountSummary `json:"account"`
	Tickets []string       `json:"tickets"`
}

// TicketCheckResult reports whether a ticket has already been issued
type TicketCheckResult struct {
	Exists       bool            `json:"exists"`
	TicketNumber string          `json:"ticketNumber" example:"T1"`
	Account      *AccountSummary `json:"account,omitempty"`
}

// TicketRemovalResult is returned after a ticket is detached from an account
type TicketRemovalResult struct {
	Message string   `json:"message" example:"Ticket removed successfully"`
	Account *Account `json:"account"`
}

// TicketQRCode carries a base64 PNG rendering of a ticket value
type TicketQRCode struct {
	TicketNumber string `json:"ticketNumber" example:"T1"`
	QRImage      string `json:"qrImage"`
}

// MessageResponse is a plain acknowledgement body
type MessageResponse struct {
	Message string `json:"message" example:"Account deleted successfully"`
}

// HealthStatus reports liveness and backing service connectivity
type HealthStatus struct {
	Status   string `json:"status" example:"ok"`
	Message  string `json:"message" example:"Lucky Draw API is running"`
	Database string `json:"database" example:"connected"`
	Cache    string `json:"cache" example:"connected"`
}
