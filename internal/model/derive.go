package model

// DeriveRequest represents request for POST /derive/...
type DeriveRequest struct {
	Code     string `json:"code"`
	Password string `json:"password"`
}

// RawKeyResponse represents response for POST /derive/raw
type RawKeyResponse struct {
	Key string `json:"key"` // 64 lowercase hex characters
}

// BitcoinKeyResponse represents response for POST /derive/bitcoin
type BitcoinKeyResponse struct {
	WIF     string `json:"wif"`
	Address string `json:"address"`
	QR      string `json:"QR"` // PNG of the WIF, base64
}

// HealthResponse represents response for GET /health
type HealthResponse struct {
	Status string `json:"status"`
}
