package http

import "time"

// Request bodies.

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type generateKeyRequest struct {
	Name string `json:"name"`
}

type createSessionRequest struct {
	Title string `json:"title"`
}

type appendMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response bodies. Field names follow the public API contract (camelCase).

type userSummary struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type authResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    userSummary `json:"user"`
}

type profileResponse struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Active    bool      `json:"active"`
}

type updateProfileResponse struct {
	Message string      `json:"message"`
	User    userSummary `json:"user"`
}

type generateKeyResponse struct {
	Message   string    `json:"message"`
	APIKey    string    `json:"apiKey"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type apiKeyItem struct {
	Name      string     `json:"name"`
	APIKey    string     `json:"apiKey"` // masked, never the full secret
	CreatedAt time.Time  `json:"createdAt"`
	Active    bool       `json:"active"`
	LastUsed  *time.Time `json:"lastUsed"`
}

type createSessionResponse struct {
	Message   string    `json:"message"`
	SessionID string    `json:"sessionId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

type sessionSummaryItem struct {
	SessionID    string    `json:"sessionId"`
	Title        string    `json:"title"`
	MessageCount int       `json:"messageCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type messageItem struct {
	MessageID string    `json:"messageId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type sessionDetailResponse struct {
	SessionID string        `json:"sessionId"`
	UserID    string        `json:"userId"`
	Title     string        `json:"title"`
	Messages  []messageItem `json:"messages"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

type appendMessageResponse struct {
	Message   string    `json:"message"`
	MessageID string    `json:"messageId"`
	Timestamp time.Time `json:"timestamp"`
}

type statusResponse struct {
	Message string `json:"message"`
}

type healthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Environment string    `json:"environment"`
}
