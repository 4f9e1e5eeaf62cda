package request

type SignUpRequest struct {
	Name     string `json:"name,omitempty" validate:"required,min=2,max=100"`
	Email    string `json:"email,omitempty" validate:"required,email,max=255"`
	Password string `json:"password,omitempty" validate:"required,min=7,max=100"`
	Age      int    `json:"age,omitempty" validate:"gte=0"`
}

type LoginRequest struct {
	Email    string `json:"email,omitempty" validate:"required,email,max=255"`
	Password string `json:"password,omitempty" validate:"required,max=100"`
}
