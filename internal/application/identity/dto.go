package identity

import (
	"time"

	"github.com/chedfms/liqtrack/internal/domain/identity"
	"github.com/google/uuid"
)

// LoginInput contains login credentials
type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
	User                  UserInfo  `json:"user"`
}

// UserInfo contains user information returned to clients
type UserInfo struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email,omitempty"`
	DisplayName    string    `json:"display_name"`
	Role           string    `json:"role"`
	RoleDisplay    string    `json:"role_display"`
	InstitutionUII string    `json:"institution_uii,omitempty"`
	Region         string    `json:"region,omitempty"`
	Status         string    `json:"status"`
	Capabilities   []string  `json:"capabilities"`
}

// RefreshTokenInput contains the refresh token
type RefreshTokenInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshTokenResult contains the refreshed token pair
type RefreshTokenResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// ChangePasswordInput contains password change data
type ChangePasswordInput struct {
	UserID      uuid.UUID `json:"-"`
	OldPassword string    `json:"old_password" binding:"required"`
	NewPassword string    `json:"new_password" binding:"required,min=8"`
}

// CreateUserRequest contains data for creating a user account
type CreateUserRequest struct {
	Username       string `json:"username" binding:"required,min=3,max=50"`
	Password       string `json:"password" binding:"required,min=8"`
	Email          string `json:"email" binding:"omitempty,email"`
	DisplayName    string `json:"display_name" binding:"omitempty,max=200"`
	Role           string `json:"role" binding:"required"`
	InstitutionUII string `json:"institution_uii" binding:"omitempty,max=50"`
	Region         string `json:"region" binding:"omitempty,max=100"`
}

// UpdateUserRequest contains mutable profile fields
type UpdateUserRequest struct {
	Email          *string `json:"email" binding:"omitempty,email"`
	DisplayName    *string `json:"display_name" binding:"omitempty,max=200"`
	InstitutionUII *string `json:"institution_uii" binding:"omitempty,max=50"`
	Region         *string `json:"region" binding:"omitempty,max=100"`
}

// ChangeRoleRequest assigns a new role to a user
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// ResetPasswordRequest sets a new password without the old one
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// ListUsersFilter carries user listing parameters
type ListUsersFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Search   string `form:"search"`
	Role     string `form:"role"`
	Status   string `form:"status"`
	Region   string `form:"region"`
}

// UserListResult is a paginated list of users
type UserListResult struct {
	Items    []UserInfo `json:"items"`
	Total    int64      `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}

// ToUserInfo converts a user aggregate to its client representation
func ToUserInfo(user *identity.User) UserInfo {
	caps := user.Role.Capabilities()
	capStrings := make([]string, len(caps))
	for i, c := range caps {
		capStrings[i] = string(c)
	}

	return UserInfo{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		DisplayName:    user.GetDisplayNameOrUsername(),
		Role:           string(user.Role),
		RoleDisplay:    user.Role.DisplayName(),
		InstitutionUII: user.InstitutionUII,
		Region:         user.Region,
		Status:         string(user.Status),
		Capabilities:   capStrings,
	}
}
