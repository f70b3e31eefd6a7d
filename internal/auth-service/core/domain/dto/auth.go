package dto

type RegisterRequestDto struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

type LoginRequestDto struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type AuthResponseDto struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Token  string `json:"token"`
}
