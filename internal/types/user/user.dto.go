package user

type CreateUserRequest struct {
	ClerkID   string `json:"clerkId" validate:"required"`
	Email     string `json:"email" validate:"omitempty,email"`
	Username  string `json:"username" validate:"omitempty,max=64"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	ImageURL  string `json:"imageUrl,omitempty"`
	Timezone  string `json:"timezone,omitempty" validate:"omitempty,timezone"`
}

type UpdateProfileRequest struct {
	Username  string `json:"username,omitempty" validate:"omitempty,min=3,max=30"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty" validate:"omitempty,url"`
	Timezone  string `json:"timezone,omitempty" validate:"omitempty,timezone"`
	ScoreMode string `json:"scoreMode,omitempty" validate:"omitempty,oneof=pilot extended"`
}
