package model

// LoginRequest represents the credentials posted by the login form
type LoginRequest struct {
	User string `json:"user" validate:"required"`
	Pass string `json:"pass" validate:"required"`
}

// LoginResponse represents a successful login
type LoginResponse struct {
	OK bool `json:"ok"`
}

// ResetResponse represents the result of restoring the seed setlist
type ResetResponse struct {
	OK    bool `json:"ok"`
	Count int  `json:"count"`
}

// HealthResponse represents the health check payload
type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}
