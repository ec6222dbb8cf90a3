package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/noteduco342/bible-reading-backend/internal/models"
	"github.com/noteduco342/bible-reading-backend/internal/repository"
	"github.com/noteduco342/bible-reading-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGroupCreateListMembers(t *testing.T) {
	db := testutil.OpenTestDB(t)
	h := testutil.NewTestHelper(t)
	groups := repository.NewGroupRepository(db)
	ctx := context.Background()

	owner := h.CreateUser(db, "owner")
	member := h.CreateUser(db, "member")
	group := h.CreateGroup(db, "dawn", "1A2B3C4D", owner)
	h.AddMember(db, group, member)

	ok, err := groups.IsMember(ctx, group.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	found, err := groups.FindByInviteCode(ctx, "1A2B3C4D")
	require.NoError(t, err)
	assert.Equal(t, group.ID, found.ID)

	summaries, err := groups.ListForUser(ctx, member.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "owner", summaries[0].OwnerName)
	assert.EqualValues(t, 2, summaries[0].MemberCount)
	assert.False(t, summaries[0].IsOwner)

	members, err := groups.ListMembers(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	owners := 0
	for _, m := range members {
		if m.IsOwner {
			owners++
			assert.Equal(t, "owner", m.Username)
		}
	}
	assert.Equal(t, 1, owners)

	assert.Error(t, groups.AddMember(ctx, group.ID, member.ID), "duplicate membership must fail")
}

func TestRemoveMemberDeletesGroupScopedRows(t *testing.T) {
	db := testutil.OpenTestDB(t)
	h := testutil.NewTestHelper(t)
	groups := repository.NewGroupRepository(db)
	progress := repository.NewProgressRepository(db)
	audio := repository.NewAudioRepository(db)
	ctx := context.Background()

	owner := h.CreateUser(db, "owner")
	member := h.CreateUser(db, "member")
	group := h.CreateGroup(db, "noon", "AAAA0000", owner)
	h.AddMember(db, group, member)

	b := batch("창세기", 1, "창세기:1")
	b.History = []models.HistoryEntry{{Date: time.Now(), Book: "창세기", StartChapter: 1, StartVerse: 1}}
	require.NoError(t, progress.Save(ctx, "member", &group.ID, b))
	require.NoError(t, progress.Save(ctx, "member", nil, b))
	_, err := repository.NewCompletionRepository(db).Finalize(ctx, member.ID, &group.ID)
	require.NoError(t, err)
	require.NoError(t, audio.Create(ctx, &models.AudioRecording{
		UserID: member.ID, GroupID: &group.ID, FileKey: "audio/2/20261017/x.webm", BookName: "창세기", Chapter: 1, Verse: 1,
	}))

	require.NoError(t, groups.RemoveMember(ctx, group.ID, member.ID))

	for _, model := range []interface{}{
		&models.ReadingProgress{}, &models.CompletedChapter{}, &models.ReadingHistory{},
		&models.HallOfFame{}, &models.AudioRecording{}, &models.GroupMember{},
	} {
		assert.EqualValues(t, 0, h.Count(db, model, "user_id = ? AND group_id = ?", member.ID, group.ID), "%T", model)
	}
	// Personal rows survive.
	assert.EqualValues(t, 1, h.Count(db, &models.ReadingProgress{}, "user_id = ? AND group_id IS NULL", member.ID))
	assert.EqualValues(t, 1, h.Count(db, &models.ReadingHistory{}, "user_id = ? AND group_id IS NULL", member.ID))

	err = groups.RemoveMember(ctx, group.ID, member.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestDeleteGroupCascades(t *testing.T) {
	db := testutil.OpenTestDB(t)
	h := testutil.NewTestHelper(t)
	groups := repository.NewGroupRepository(db)
	progress := repository.NewProgressRepository(db)
	ctx := context.Background()

	owner := h.CreateUser(db, "owner")
	member := h.CreateUser(db, "member")
	group := h.CreateGroup(db, "dusk", "BBBB1111", owner)
	h.AddMember(db, group, member)
	require.NoError(t, progress.Save(ctx, "owner", &group.ID, batch("창세기", 1, "창세기:1")))
	require.NoError(t, progress.Save(ctx, "member", &group.ID, batch("창세기", 2, "창세기:1", "창세기:2")))

	require.NoError(t, groups.Delete(ctx, group.ID))

	assert.EqualValues(t, 0, h.Count(db, &models.GroupMember{}, "group_id = ?", group.ID))
	assert.EqualValues(t, 0, h.Count(db, &models.ReadingProgress{}, "group_id = ?", group.ID))
	assert.EqualValues(t, 0, h.Count(db, &models.CompletedChapter{}, "group_id = ?", group.ID))
	assert.EqualValues(t, 2, h.Count(db, &models.User{}, ""))

	assert.True(t, errors.Is(groups.Delete(ctx, group.ID), gorm.ErrRecordNotFound))
}

func TestUpdateOwner(t *testing.T) {
	db := testutil.OpenTestDB(t)
	h := testutil.NewTestHelper(t)
	groups := repository.NewGroupRepository(db)
	ctx := context.Background()

	owner := h.CreateUser(db, "owner")
	heir := h.CreateUser(db, "heir")
	group := h.CreateGroup(db, "night", "CCCC2222", owner)
	h.AddMember(db, group, heir)

	require.NoError(t, groups.UpdateOwner(ctx, group.ID, heir.ID))
	reloaded, err := groups.FindByID(ctx, group.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsOwnedBy(heir.ID))
}

func TestDeleteUserCascades(t *testing.T) {
	db := testutil.OpenTestDB(t)
	h := testutil.NewTestHelper(t)
	users := repository.NewUserRepository(db)
	groups := repository.NewGroupRepository(db)
	progress := repository.NewProgressRepository(db)
	ctx := context.Background()

	owner := h.CreateUser(db, "owner")
	group := h.CreateGroup(db, "solo", "DDDD3333", owner)
	require.NoError(t, progress.Save(ctx, "owner", nil, batch("창세기", 1, "창세기:1")))

	require.NoError(t, users.Delete(ctx, owner.ID))

	assert.EqualValues(t, 0, h.Count(db, &models.ReadingProgress{}, ""))
	assert.EqualValues(t, 0, h.Count(db, &models.CompletedChapter{}, ""))
	reloaded, err := groups.FindByID(ctx, group.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.OwnerID)
}
