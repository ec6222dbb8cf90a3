package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io"
	"strings"

	"github.com/noteduco342/bible-reading-backend/internal/models"
	"github.com/noteduco342/bible-reading-backend/internal/repository"
	"github.com/noteduco342/bible-reading-backend/internal/validation"
	"gorm.io/gorm"
)

const maxGroupNameLength = 100

type GroupService struct {
	groupRepo   repository.GroupRepositoryInterface
	userRepo    repository.UserRepositoryInterface
	invalidator ScopeInvalidator
	random      io.Reader
}

func NewGroupService(groupRepo repository.GroupRepositoryInterface, userRepo repository.UserRepositoryInterface, invalidator ScopeInvalidator) *GroupService {
	return &GroupService{
		groupRepo:   groupRepo,
		userRepo:    userRepo,
		invalidator: invalidator,
		random:      rand.Reader,
	}
}

type CreateGroupInput struct {
	Name string `json:"name" validate:"required,max=100"`
}

type JoinGroupInput struct {
	InviteCode string `json:"inviteCode" validate:"required"`
}

type TransferOwnershipInput struct {
	NewOwnerID uint `json:"newOwnerId" validate:"required"`
}

// newInviteCode returns 8 uppercase hex characters. Collisions are left to
// the unique index.
func (s *GroupService) newInviteCode() (string, error) {
	b := make([]byte, 4)
	if _, err := io.ReadFull(s.random, b); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

// CreateGroup creates a group owned by ownerID, who joins it immediately.
func (s *GroupService) CreateGroup(ctx context.Context, ownerID uint, input CreateGroupInput) (*models.Group, error) {
	input.Name = validation.TrimAndLimit(input.Name, maxGroupNameLength)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.FindByID(ctx, ownerID); err != nil {
		return nil, notFound(err, errUserNotFound)
	}

	code, err := s.newInviteCode()
	if err != nil {
		return nil, err
	}
	group := &models.Group{Name: input.Name, InviteCode: code}
	if err := s.groupRepo.CreateWithOwner(ctx, group, ownerID); err != nil {
		return nil, err
	}
	return group, nil
}

// JoinGroup adds userID to the group the invite code belongs to. Codes are
// matched case-insensitively.
func (s *GroupService) JoinGroup(ctx context.Context, userID uint, input JoinGroupInput) (*models.Group, error) {
	input.InviteCode = validation.NormalizeInviteCode(input.InviteCode)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	group, err := s.groupRepo.FindByInviteCode(ctx, input.InviteCode)
	if err != nil {
		return nil, notFound(err, newError(ErrNotFound, "invite_code_not_found", "유효하지 않은 초대 코드입니다."))
	}

	isMember, err := s.groupRepo.IsMember(ctx, group.ID, userID)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, newError(ErrConflict, "already_member", "이미 가입한 그룹입니다.")
	}

	if err := s.groupRepo.AddMember(ctx, group.ID, userID); err != nil {
		return nil, err
	}
	return group, nil
}

// LeaveGroup removes the member and every row they wrote inside the group.
// Owners have to transfer ownership or delete the group first.
func (s *GroupService) LeaveGroup(ctx context.Context, groupID, userID uint) error {
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return notFound(err, errGroupNotFound)
	}
	if group.IsOwnedBy(userID) {
		return newError(ErrConflict, "owner_cannot_leave", "그룹장은 그룹을 나갈 수 없습니다. 그룹장을 위임하거나 그룹을 삭제해주세요.")
	}

	if err := s.groupRepo.RemoveMember(ctx, groupID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newError(ErrNotFound, "not_group_member", "가입하지 않은 그룹입니다.")
		}
		return err
	}
	s.invalidate(ctx, groupID)
	return nil
}

// DeleteGroup deletes the group and, through cascades, everything scoped to it.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID, userID uint) error {
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return notFound(err, errGroupNotFound)
	}
	if !group.IsOwnedBy(userID) {
		return errNotGroupOwner
	}
	if err := s.groupRepo.Delete(ctx, groupID); err != nil {
		return notFound(err, errGroupNotFound)
	}
	s.invalidate(ctx, groupID)
	return nil
}

func (s *GroupService) TransferOwnership(ctx context.Context, groupID, userID uint, input TransferOwnershipInput) (*models.Group, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return nil, notFound(err, errGroupNotFound)
	}
	if !group.IsOwnedBy(userID) {
		return nil, errNotGroupOwner
	}
	if input.NewOwnerID == userID {
		return nil, newError(ErrValidation, "already_owner", "이미 그룹장입니다.")
	}

	isMember, err := s.groupRepo.IsMember(ctx, groupID, input.NewOwnerID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, newError(ErrValidation, "new_owner_not_member", "새 그룹장은 그룹 멤버여야 합니다.")
	}

	if err := s.groupRepo.UpdateOwner(ctx, groupID, input.NewOwnerID); err != nil {
		return nil, notFound(err, errGroupNotFound)
	}
	return s.groupRepo.FindByID(ctx, groupID)
}

// ListUserGroups lists the groups of targetID. Callers may only list their own.
func (s *GroupService) ListUserGroups(ctx context.Context, callerID, targetID uint) ([]models.GroupSummary, error) {
	if callerID != targetID {
		return nil, errSelfOnly
	}
	groups, err := s.groupRepo.ListForUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if groups == nil {
		groups = []models.GroupSummary{}
	}
	return groups, nil
}

// ListMembers is visible to members of the group only.
func (s *GroupService) ListMembers(ctx context.Context, groupID, userID uint) ([]models.GroupMemberInfo, error) {
	if _, err := s.groupRepo.FindByID(ctx, groupID); err != nil {
		return nil, notFound(err, errGroupNotFound)
	}
	if err := s.RequireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return s.groupRepo.ListMembers(ctx, groupID)
}

// RequireMember fails with a forbidden error unless userID belongs to groupID.
func (s *GroupService) RequireMember(ctx context.Context, groupID, userID uint) error {
	isMember, err := s.groupRepo.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return errNotGroupMember
	}
	return nil
}

func (s *GroupService) invalidate(ctx context.Context, groupID uint) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, &groupID)
	}
}
