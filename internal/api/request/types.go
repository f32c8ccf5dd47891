package request

// CreateGuestRequest is the request body for creating a guest player
type CreateGuestRequest struct {
	DisplayName string `json:"display_name"`
}

// RegisterRequest is the request body for registering a player
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// FireRequest is the request body for firing at the opponent's grid.
// Pointers distinguish a missing coordinate from zero.
type FireRequest struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

// InviteBotRequest is the request body for inviting a CPU opponent
type InviteBotRequest struct {
	Strategy string `json:"strategy,omitempty"`
}
