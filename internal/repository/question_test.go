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

func TestQuestionRepository_GetByID_Details(t *testing.T) {
	cache.SetClient(nil)
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	questions := NewQuestionRepository(db)
	tags := NewTagRepository(db)
	votes := NewVoteRepository(db)

	owner := testutil.CreateUser(t, db, "owner", models.RoleUser)
	voter1 := testutil.CreateUser(t, db, "voter1", models.RoleUser)
	voter2 := testutil.CreateUser(t, db, "voter2", models.RoleUser)
	q := testutil.CreateQuestion(t, db, owner.ID, "How do channels work?")

	tag, err := tags.FindOrCreate(ctx, "go")
	require.NoError(t, err)
	require.NoError(t, tags.Attach(ctx, q.ID, tag.ID))

	testutil.CreateAnswer(t, db, q.ID, voter1.ID, false)
	deletedAnswer := testutil.CreateAnswer(t, db, q.ID, voter2.ID, false)
	require.NoError(t, db.Model(deletedAnswer).Update("status", models.StatusDeleted).Error)

	require.NoError(t, votes.Create(ctx, &models.Vote{UserID: voter1.ID, TargetID: q.ID, TargetType: models.TargetQuestion, Value: models.VoteUp}))
	require.NoError(t, votes.Create(ctx, &models.Vote{UserID: voter2.ID, TargetID: q.ID, TargetType: models.TargetQuestion, Value: models.VoteUp}))

	got, err := questions.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.AnswerCount)
	assert.Equal(t, int64(2), got.Score)
	require.NotNil(t, got.User)
	assert.Equal(t, "owner", got.User.Username)
	assert.Empty(t, got.User.Email)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "go", got.Tags[0].Name)

	_, err = questions.GetByID(ctx, 999)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestQuestionRepository_List(t *testing.T) {
	cache.SetClient(nil)
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	repo := NewQuestionRepository(db)
	tags := NewTagRepository(db)
	votes := NewVoteRepository(db)

	owner := testutil.CreateUser(t, db, "owner", models.RoleUser)
	other := testutil.CreateUser(t, db, "other", models.RoleUser)

	first := testutil.CreateQuestion(t, db, owner.ID, "Goroutine leak")
	second := testutil.CreateQuestion(t, db, owner.ID, "React hooks")
	third := testutil.CreateQuestion(t, db, other.ID, "Deleted one")
	require.NoError(t, repo.SetStatus(ctx, third.ID, models.StatusDeleted))

	react, err := tags.FindOrCreate(ctx, "react")
	require.NoError(t, err)
	require.NoError(t, tags.Attach(ctx, second.ID, react.ID))
	testutil.CreateAnswer(t, db, second.ID, other.ID, false)
	require.NoError(t, votes.Create(ctx, &models.Vote{UserID: other.ID, TargetID: first.ID, TargetType: models.TargetQuestion, Value: models.VoteUp}))

	active := []models.ContentStatus{models.StatusActive}

	t.Run("newest first, deleted excluded", func(t *testing.T) {
		got, err := repo.List(ctx, QuestionFilter{Statuses: active})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, second.ID, got[0].ID)
		assert.Equal(t, first.ID, got[1].ID)
		assert.NotNil(t, got[1].Tags)
	})

	t.Run("by votes", func(t *testing.T) {
		got, err := repo.List(ctx, QuestionFilter{Statuses: active, Sort: SortVotes})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, first.ID, got[0].ID)
	})

	t.Run("unanswered", func(t *testing.T) {
		got, err := repo.List(ctx, QuestionFilter{Statuses: active, Sort: SortUnanswered})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, first.ID, got[0].ID)
	})

	t.Run("by tag", func(t *testing.T) {
		got, err := repo.List(ctx, QuestionFilter{Statuses: active, Tag: " React "})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, second.ID, got[0].ID)
		assert.Equal(t, "react", got[0].Tags[0].Name)
	})

	t.Run("search", func(t *testing.T) {
		got, err := repo.List(ctx, QuestionFilter{Statuses: active, Query: "GOROUTINE"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, first.ID, got[0].ID)
	})

	t.Run("by user, any status", func(t *testing.T) {
		got, err := repo.List(ctx, QuestionFilter{UserID: other.ID})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, models.StatusDeleted, got[0].Status)
	})

	t.Run("pagination", func(t *testing.T) {
		got, err := repo.List(ctx, QuestionFilter{Statuses: active, Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, first.ID, got[0].ID)
	})
}

func TestQuestionRepository_Update(t *testing.T) {
	cache.SetClient(nil)
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	repo := NewQuestionRepository(db)
	owner := testutil.CreateUser(t, db, "owner", models.RoleUser)
	q := testutil.CreateQuestion(t, db, owner.ID, "old")

	require.NoError(t, repo.Update(ctx, q.ID, map[string]any{"title": "new"}))
	got, err := repo.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)
	assert.Equal(t, "body of old", got.Body)

	err = repo.Update(ctx, 999, map[string]any{"title": "x"})
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestQuestionRepository_HardDelete(t *testing.T) {
	cache.SetClient(nil)
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	repo := NewQuestionRepository(db)
	tags := NewTagRepository(db)
	votes := NewVoteRepository(db)
	reports := NewReportRepository(db)

	owner := testutil.CreateUser(t, db, "owner", models.RoleUser)
	voter := testutil.CreateUser(t, db, "voter", models.RoleUser)
	q := testutil.CreateQuestion(t, db, owner.ID, "doomed")
	keep := testutil.CreateQuestion(t, db, owner.ID, "survivor")
	a := testutil.CreateAnswer(t, db, q.ID, voter.ID, false)
	tag, err := tags.FindOrCreate(ctx, "go")
	require.NoError(t, err)
	require.NoError(t, tags.Attach(ctx, q.ID, tag.ID))
	require.NoError(t, tags.Attach(ctx, keep.ID, tag.ID))
	require.NoError(t, votes.Create(ctx, &models.Vote{UserID: voter.ID, TargetID: q.ID, TargetType: models.TargetQuestion, Value: models.VoteDown}))
	require.NoError(t, votes.Create(ctx, &models.Vote{UserID: owner.ID, TargetID: a.ID, TargetType: models.TargetAnswer, Value: models.VoteUp}))
	require.NoError(t, reports.Create(ctx, &models.Report{UserID: voter.ID, TargetID: q.ID, TargetType: models.TargetQuestion, Reason: "spam"}))

	require.NoError(t, repo.HardDelete(ctx, q.ID))

	var count int64
	require.NoError(t, db.Model(&models.Question{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	require.NoError(t, db.Model(&models.Answer{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.Vote{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.Report{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.QuestionTag{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	err = repo.HardDelete(ctx, q.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}
