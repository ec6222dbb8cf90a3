package models

import (
	"time"
)

type Group struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Name       string `gorm:"size:100;not null" json:"name"`
	InviteCode string `gorm:"size:16;uniqueIndex;not null" json:"invite_code"`
	OwnerID    *uint  `gorm:"index" json:"owner_id"`

	Owner *User `gorm:"foreignKey:OwnerID;constraint:OnDelete:SET NULL" json:"-"`
}

func (Group) TableName() string { return "groups" }

// IsOwnedBy reports whether userID currently owns the group.
func (g *Group) IsOwnedBy(userID uint) bool {
	return g.OwnerID != nil && *g.OwnerID == userID
}

type GroupMember struct {
	GroupID  uint      `gorm:"primaryKey" json:"group_id"`
	UserID   uint      `gorm:"primaryKey;index" json:"user_id"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`

	Group *Group `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
	User  *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (GroupMember) TableName() string { return "group_members" }

// GroupSummary is a group as listed for one of its members.
type GroupSummary struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	InviteCode  string    `json:"invite_code"`
	OwnerID     *uint     `json:"owner_id"`
	OwnerName   string    `json:"owner_name"`
	MemberCount int64     `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
	IsOwner     bool      `json:"is_owner"`
}

// GroupMemberInfo is one row of a group's member list.
type GroupMemberInfo struct {
	GroupID  uint      `json:"group_id"`
	UserID   uint      `json:"user_id"`
	Username string    `json:"username"`
	JoinedAt time.Time `json:"joined_at"`
	IsOwner  bool      `json:"is_owner"`
}
