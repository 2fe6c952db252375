package dto

// LoginRequest is the request body for account login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// PaymentRequest is the request body for executing a transfer.
type PaymentRequest struct {
	PayeeID string `json:"payee_id" binding:"required,uuid"`
	Amount  int64  `json:"amount" binding:"required"`
}

// TransactionResponse is the response body for a committed transfer.
type TransactionResponse struct {
	ID        string `json:"id"`
	PayerID   string `json:"payer_id"`
	PayeeID   string `json:"payee_id"`
	Amount    int64  `json:"amount"`
	CreatedAt string `json:"created_at"`
}

// AccountResponse is the response body for account queries.
type AccountResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	Balance     int64  `json:"balance"`
}

// LedgerEntryResponse is one received transfer in the payee's history.
type LedgerEntryResponse struct {
	ID               string `json:"id"`
	PayerID          string `json:"payer_id"`
	PayerDisplayName string `json:"payer_display_name"`
	Amount           int64  `json:"amount"`
	CreatedAt        string `json:"created_at"`
}

// TransactionListResponse wraps the payee's received-transfer history.
type TransactionListResponse struct {
	Items []LedgerEntryResponse `json:"items"`
	Count int                   `json:"count"`
}

// CreateAccountRequest is the admin request body for provisioning an account.
type CreateAccountRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8,max=128"`
	Role        string `json:"role" binding:"required,oneof=consumer merchant admin"`
	DisplayName string `json:"display_name" binding:"required,min=1,max=100"`
}
