package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/shareml/shareml_go_server/internal/model"
	"github.com/shareml/shareml_go_server/internal/model/dto"
	"github.com/shareml/shareml_go_server/internal/repository"
)

var (
	ErrGroupPermission   = errors.New("只有队长可以管理团队成员")
	ErrAlreadyMember     = errors.New("该用户已是团队成员")
	ErrMemberNotFound    = errors.New("该用户不是团队成员")
	ErrLeaderCannotLeave = errors.New("队长不能被移出团队")
)

type GroupService struct {
	groupRepo *repository.GroupRepository
	userRepo  *repository.UserRepository
}

func NewGroupService(groupRepo *repository.GroupRepository, userRepo *repository.UserRepository) *GroupService {
	return &GroupService{
		groupRepo: groupRepo,
		userRepo:  userRepo,
	}
}

// Create 创建团队，创建者即队长
func (s *GroupService) Create(userID int64, req *dto.CreateGroupRequest) (*dto.GroupDetail, error) {
	group := &model.Group{
		Name:        req.Name,
		Description: req.Description,
		LeaderID:    userID,
	}

	if err := s.groupRepo.Create(group); err != nil {
		return nil, err
	}

	return s.GetByID(group.ID)
}

// GetByID 获取团队详情（含成员）
func (s *GroupService) GetByID(groupID int64) (*dto.GroupDetail, error) {
	group, err := s.groupRepo.GetByIDWithMembers(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}

	return buildGroupDetail(group), nil
}

// List 用户所在的团队
func (s *GroupService) List(userID int64) ([]*dto.GroupDetail, error) {
	groups, err := s.groupRepo.ListByUserID(userID)
	if err != nil {
		return nil, err
	}

	details := make([]*dto.GroupDetail, len(groups))
	for i, g := range groups {
		detail, err := s.GetByID(g.ID)
		if err != nil {
			return nil, err
		}
		details[i] = detail
	}
	return details, nil
}

// AddMember 添加成员（仅队长）
func (s *GroupService) AddMember(actorID, groupID int64, req *dto.AddMemberRequest) error {
	group, err := s.groupRepo.GetByID(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		return err
	}

	if group.LeaderID != actorID {
		return ErrGroupPermission
	}

	user, err := s.userRepo.GetByUsername(req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if user.ID == group.LeaderID {
		return ErrAlreadyMember
	}
	isMember, err := s.groupRepo.IsMember(groupID, user.ID)
	if err != nil {
		return err
	}
	if isMember {
		return ErrAlreadyMember
	}

	return s.groupRepo.AddMember(&model.GroupMember{
		GroupID: groupID,
		UserID:  user.ID,
	})
}

// RemoveMember 移除成员（仅队长）
func (s *GroupService) RemoveMember(actorID, groupID, userID int64) error {
	group, err := s.groupRepo.GetByID(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		return err
	}

	if group.LeaderID != actorID {
		return ErrGroupPermission
	}
	if userID == group.LeaderID {
		return ErrLeaderCannotLeave
	}

	isMember, err := s.groupRepo.IsMember(groupID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return ErrMemberNotFound
	}

	return s.groupRepo.RemoveMember(groupID, userID)
}

func buildGroupDetail(group *model.Group) *dto.GroupDetail {
	detail := &dto.GroupDetail{
		ID:          group.ID,
		Name:        group.Name,
		Description: group.Description,
		LeaderID:    group.LeaderID,
		CreatedAt:   group.CreatedAt.Format(time.RFC3339),
	}
	if group.Leader != nil {
		detail.LeaderUsername = group.Leader.Username
	}

	detail.Members = make([]dto.GroupMemberInfo, 0, len(group.Members))
	for _, m := range group.Members {
		info := dto.GroupMemberInfo{
			UserID:   m.UserID,
			JoinedAt: m.JoinedAt.Format(time.RFC3339),
		}
		if m.User != nil {
			info.Username = m.User.Username
		}
		detail.Members = append(detail.Members, info)
	}
	return detail
}
