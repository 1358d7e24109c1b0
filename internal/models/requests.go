package models

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type LogoutResponse struct {
	Message string `json:"message"`
}

type CreateUserRequest struct {
	Username string         `json:"username"`
	Password string         `json:"password"`
	Role     string         `json:"role,omitempty"`
	Email    string         `json:"email,omitempty"`
	Name     string         `json:"name,omitempty"`
	Address  map[string]any `json:"address,omitempty"`
	Comment  string         `json:"comment,omitempty"`
}

// UpdateUserRequest uses pointers so the service can tell an absent field
// from an empty one. Username is decoded only to reject it.
type UpdateUserRequest struct {
	Username *string        `json:"username,omitempty"`
	Password *string        `json:"password,omitempty"`
	Role     *string        `json:"role,omitempty"`
	Email    *string        `json:"email,omitempty"`
	Name     *string        `json:"name,omitempty"`
	Address  map[string]any `json:"address,omitempty"`
	Comment  *string        `json:"comment,omitempty"`
}

type ListUsersResponse struct {
	Data  []*User `json:"data"`
	Page  int     `json:"page"`
	Limit int     `json:"limit"`
}
