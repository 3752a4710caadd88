package repository

import (
	"context"
	"testing"

	"stackit/internal/cache"
	"stackit/internal/models"
	"stackit/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerRepository_SetAccepted_ClearsOthers(t *testing.T) {
	cache.SetClient(nil)
	db := testutil.NewSQLiteDB(t)
	repo := NewAnswerRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner", models.RoleUser)
	helper := testutil.CreateUser(t, db, "helper", models.RoleUser)
	q := testutil.CreateQuestion(t, db, owner.ID, "q")
	other := testutil.CreateQuestion(t, db, owner.ID, "other")
	a1 := testutil.CreateAnswer(t, db, q.ID, helper.ID, true)
	a2 := testutil.CreateAnswer(t, db, q.ID, helper.ID, false)
	elsewhere := testutil.CreateAnswer(t, db, other.ID, helper.ID, true)

	require.NoError(t, repo.SetAccepted(ctx, a2, true))
	assert.True(t, a2.IsAccepted)

	got1, err := repo.GetByID(ctx, a1.ID)
	require.NoError(t, err)
	assert.False(t, got1.IsAccepted)
	got2, err := repo.GetByID(ctx, a2.ID)
	require.NoError(t, err)
	assert.True(t, got2.IsAccepted)
	gotOther, err := repo.GetByID(ctx, elsewhere.ID)
	require.NoError(t, err)
	assert.True(t, gotOther.IsAccepted)

	require.NoError(t, repo.SetAccepted(ctx, a2, false))
	got2, err = repo.GetByID(ctx, a2.ID)
	require.NoError(t, err)
	assert.False(t, got2.IsAccepted)
}

func TestAnswerRepository_ListByQuestion(t *testing.T) {
	cache.SetClient(nil)
	db := testutil.NewSQLiteDB(t)
	repo := NewAnswerRepository(db)
	votes := NewVoteRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner", models.RoleUser)
	q := testutil.CreateQuestion(t, db, owner.ID, "q")
	older := testutil.CreateAnswer(t, db, q.ID, owner.ID, false)
	newer := testutil.CreateAnswer(t, db, q.ID, owner.ID, false)
	flagged := testutil.CreateAnswer(t, db, q.ID, owner.ID, false)
	require.NoError(t, repo.SetStatus(ctx, flagged.ID, models.StatusFlagged))
	voter := testutil.CreateUser(t, db, "voter", models.RoleUser)
	require.NoError(t, votes.Create(ctx, &models.Vote{UserID: voter.ID, TargetID: older.ID, TargetType: models.TargetAnswer, Value: models.VoteDown}))

	active, err := repo.ListByQuestion(ctx, q.ID, []models.ContentStatus{models.StatusActive})
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, newer.ID, active[0].ID)
	assert.Equal(t, older.ID, active[1].ID)
	assert.Equal(t, int64(-1), active[1].Score)
	require.NotNil(t, active[0].User)
	assert.Equal(t, "owner", active[0].User.Username)

	all, err := repo.ListByQuestion(ctx, q.ID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestAnswerRepository_ListByUser_IncludesQuestionTitle(t *testing.T) {
	cache.SetClient(nil)
	db := testutil.NewSQLiteDB(t)
	repo := NewAnswerRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner", models.RoleUser)
	helper := testutil.CreateUser(t, db, "helper", models.RoleUser)
	q := testutil.CreateQuestion(t, db, owner.ID, "Why is the sky blue?")
	testutil.CreateAnswer(t, db, q.ID, helper.ID, false)
	gone := testutil.CreateAnswer(t, db, q.ID, helper.ID, false)
	require.NoError(t, repo.SetStatus(ctx, gone.ID, models.StatusDeleted))

	got, err := repo.ListByUser(ctx, helper.ID, 20, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Why is the sky blue?", got[0].QuestionTitle)
}

func TestAnswerRepository_UpdateMissing(t *testing.T) {
	cache.SetClient(nil)
	db := testutil.NewSQLiteDB(t)
	repo := NewAnswerRepository(db)

	err := repo.Update(context.Background(), 42, map[string]any{"body": "x"})
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	_, err = repo.GetByID(context.Background(), 42)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}
