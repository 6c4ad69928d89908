package model

import (
	"time"
)

type Group struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	LeaderID    int64     `gorm:"not null;index" json:"leader_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// 关联
	Leader  *User         `gorm:"foreignKey:LeaderID" json:"leader,omitempty"`
	Members []GroupMember `gorm:"foreignKey:GroupID" json:"members,omitempty"`
}

func (Group) TableName() string {
	return "groups"
}

type GroupMember struct {
	ID       int64     `gorm:"primaryKey" json:"id"`
	GroupID  int64     `gorm:"not null;index:idx_group_user,unique" json:"group_id"`
	UserID   int64     `gorm:"not null;index:idx_group_user,unique" json:"user_id"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (GroupMember) TableName() string {
	return "group_members"
}
