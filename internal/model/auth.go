package model

type RegisterRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8,max=72"`
	Name       string `json:"name" validate:"required,max=128"`
	RollNumber string `json:"roll_number" validate:"max=32"`
	Phone      string `json:"phone" validate:"max=32"`
}

type RegisterResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

func (r RegisterResponse) AccessTokenInfo() string {
	return r.AccessToken
}

func (r LoginResponse) AccessTokenInfo() string {
	return r.AccessToken
}
