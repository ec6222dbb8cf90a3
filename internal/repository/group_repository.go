package repository

import (
	"context"

	"github.com/noteduco342/bible-reading-backend/internal/models"
	"gorm.io/gorm"
)

type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// CreateWithOwner inserts the group and the owner's membership together.
func (r *GroupRepository) CreateWithOwner(ctx context.Context, group *models.Group, ownerID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group.OwnerID = &ownerID
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		return tx.Create(&models.GroupMember{GroupID: group.ID, UserID: ownerID}).Error
	})
}

func (r *GroupRepository) FindByID(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).First(&group, id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) FindByInviteCode(ctx context.Context, code string) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).Where("invite_code = ?", code).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) AddMember(ctx context.Context, groupID, userID uint) error {
	return r.db.WithContext(ctx).Create(&models.GroupMember{GroupID: groupID, UserID: userID}).Error
}

func (r *GroupRepository) IsMember(ctx context.Context, groupID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *GroupRepository) ListForUser(ctx context.Context, userID uint) ([]models.GroupSummary, error) {
	var groups []models.GroupSummary
	err := r.db.WithContext(ctx).Raw(`
		SELECT g.id, g.name, g.invite_code, g.owner_id, g.created_at,
			COALESCE(o.username, '') AS owner_name,
			(SELECT COUNT(*) FROM group_members m WHERE m.group_id = g.id) AS member_count
		FROM "groups" g
		JOIN group_members gm ON gm.group_id = g.id
		LEFT JOIN users o ON o.id = g.owner_id
		WHERE gm.user_id = ?
		ORDER BY g.created_at ASC, g.id ASC
	`, userID).Scan(&groups).Error
	if err != nil {
		return nil, err
	}
	for i := range groups {
		groups[i].IsOwner = groups[i].OwnerID != nil && *groups[i].OwnerID == userID
	}
	return groups, nil
}

func (r *GroupRepository) ListMembers(ctx context.Context, groupID uint) ([]models.GroupMemberInfo, error) {
	group, err := r.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	var members []models.GroupMemberInfo
	err = r.db.WithContext(ctx).Raw(`
		SELECT gm.group_id, gm.user_id, u.username, gm.joined_at
		FROM group_members gm
		JOIN users u ON u.id = gm.user_id
		WHERE gm.group_id = ?
		ORDER BY gm.joined_at ASC, u.username ASC
	`, groupID).Scan(&members).Error
	if err != nil {
		return nil, err
	}
	for i := range members {
		members[i].IsOwner = group.IsOwnedBy(members[i].UserID)
	}
	return members, nil
}

// groupScopedTables hold rows partitioned by (user_id, group_id).
var groupScopedTables = []string{
	"reading_progress",
	"completed_chapters",
	"reading_history",
	"hall_of_fame",
	"audio_recordings",
}

// RemoveMember deletes the membership and every row the user wrote inside
// the group, in one transaction. Returns gorm.ErrRecordNotFound when the
// user is not a member.
func (r *GroupRepository) RemoveMember(ctx context.Context, groupID, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range groupScopedTables {
			if err := tx.Exec("DELETE FROM "+table+" WHERE user_id = ? AND group_id = ?", userID, groupID).Error; err != nil {
				return err
			}
		}
		res := tx.Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&models.GroupMember{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// Delete removes the group; memberships and group-scoped rows cascade.
func (r *GroupRepository) Delete(ctx context.Context, groupID uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Group{}, groupID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GroupRepository) UpdateOwner(ctx context.Context, groupID, ownerID uint) error {
	res := r.db.WithContext(ctx).Model(&models.Group{}).Where("id = ?", groupID).Update("owner_id", ownerID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
