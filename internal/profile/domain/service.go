package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// Resolve returns the profile for the signed-in user, creating it on
	// first sight. userID zero means nobody is logged in.
	Resolve(ctx context.Context, userID snowflake.ID) (*Profile, error)
	Update(ctx context.Context, userID snowflake.ID, req UpdateProfileRequest) (*Profile, error)
}

// UpdateProfileRequest carries a partial update; nil fields are left
// untouched.
type UpdateProfileRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Company *string `json:"company"`
	Phone   *string `json:"phone"`
}
