package repository

import (
	"gorm.io/gorm"

	"github.com/shareml/shareml_go_server/internal/model"
)

type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) Create(group *model.Group) error {
	return r.db.Create(group).Error
}

func (r *GroupRepository) GetByID(id int64) (*model.Group, error) {
	var group model.Group
	err := r.db.Where("id = ?", id).First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) GetByIDWithMembers(id int64) (*model.Group, error) {
	var group model.Group
	err := r.db.Preload("Leader").Preload("Members.User").Where("id = ?", id).First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) AddMember(member *model.GroupMember) error {
	return r.db.Create(member).Error
}

func (r *GroupRepository) RemoveMember(groupID, userID int64) error {
	return r.db.Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&model.GroupMember{}).Error
}

func (r *GroupRepository) IsMember(groupID, userID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).Count(&count).Error
	return count > 0, err
}

// ListByUserID 用户所在的团队（作为队长或成员）
func (r *GroupRepository) ListByUserID(userID int64) ([]*model.Group, error) {
	var groups []*model.Group
	err := r.db.
		Joins("LEFT JOIN group_members ON group_members.group_id = groups.id").
		Where("groups.leader_id = ? OR group_members.user_id = ?", userID, userID).
		Group("groups.id").
		Order("groups.created_at DESC").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}
