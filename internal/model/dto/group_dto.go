package dto

// CreateGroupRequest 创建团队请求
type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description,omitempty" binding:"omitempty,max=2000"`
}

// AddMemberRequest 添加成员请求
type AddMemberRequest struct {
	Username string `json:"username" binding:"required"`
}

// GroupMemberInfo 团队成员信息
type GroupMemberInfo struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	JoinedAt string `json:"joined_at"`
}

// GroupDetail 团队详情
type GroupDetail struct {
	ID             int64             `json:"id"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	LeaderID       int64             `json:"leader_id"`
	LeaderUsername string            `json:"leader_username"`
	Members        []GroupMemberInfo `json:"members"`
	CreatedAt      string            `json:"created_at"`
}
