package dto

// UserProfile 用户资料
type UserProfile struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatar_url"`
	Bio       string `json:"bio"`
	CreatedAt string `json:"created_at"`
}

// UpdateProfileRequest 更新资料请求
type UpdateProfileRequest struct {
	Bio       *string `json:"bio,omitempty" binding:"omitempty,max=2000"`
	AvatarURL *string `json:"avatar_url,omitempty" binding:"omitempty,url"`
}
