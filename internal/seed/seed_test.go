package seed

import (
	"testing"

	"stackit/internal/models"
	"stackit/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed_PopulatesForum(t *testing.T) {
	db := testutil.NewSQLiteDB(t)

	sum, err := Seed(db, Options{NumUsers: 6, NumQuestions: 12, MaxAnswers: 3, SkipBcrypt: true, RandSeed: 42})
	require.NoError(t, err)
	assert.Equal(t, 6, sum.Users)
	assert.Equal(t, 12, sum.Questions)

	var questions, answers, accepted int64
	require.NoError(t, db.Model(&models.Question{}).Count(&questions).Error)
	require.NoError(t, db.Model(&models.Answer{}).Count(&answers).Error)
	require.NoError(t, db.Model(&models.Answer{}).Where("is_accepted = ?", true).Count(&accepted).Error)
	assert.Equal(t, int64(12), questions)
	assert.Equal(t, int64(sum.Answers), answers)
	assert.Equal(t, int64(sum.Accepted), accepted)

	// nobody votes on their own content
	var selfVotes int64
	require.NoError(t, db.Raw(`SELECT COUNT(*) FROM votes v JOIN questions q
		ON v.target_type = 'question' AND v.target_id = q.id WHERE v.user_id = q.user_id`).Scan(&selfVotes).Error)
	assert.Zero(t, selfVotes)

	// at most one accepted answer per question
	var multi int64
	require.NoError(t, db.Raw(`SELECT COUNT(*) FROM (SELECT question_id FROM answers
		WHERE is_accepted = ? GROUP BY question_id HAVING COUNT(*) > 1) x`, true).Scan(&multi).Error)
	assert.Zero(t, multi)
}

func TestSeed_CleanThenReseed(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	opts := Options{NumUsers: 3, NumQuestions: 2, SkipBcrypt: true, RandSeed: 7}

	_, err := Seed(db, opts)
	require.NoError(t, err)

	opts.ShouldClean = true
	opts.RandSeed = 8
	_, err = Seed(db, opts)
	require.NoError(t, err)

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Equal(t, int64(3), users)
}

func TestFactory_DryRun(t *testing.T) {
	f := NewFactory(nil, Options{DryRun: true, SkipBcrypt: true, MaxDays: 30})

	u, err := f.CreateUser()
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.Regexp(t, `^[a-z0-9_]+$`, u.Username)

	q, err := f.CreateQuestion(u, []string{"go"})
	require.NoError(t, err)
	assert.NotZero(t, q.ID)
	assert.Greater(t, q.ID, u.ID)
	assert.Empty(t, q.Tags)

	a, err := f.CreateAnswer(q, u, true)
	require.NoError(t, err)
	assert.True(t, a.IsAccepted)
	assert.True(t, a.CreatedAt.After(q.CreatedAt))
}

func TestFactory_TagIsNormalizedAndShared(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	f := NewFactory(db, Options{SkipBcrypt: true})

	first, err := f.Tag(" React ")
	require.NoError(t, err)
	second, err := f.Tag("react")
	require.NoError(t, err)
	assert.Equal(t, "react", first.Name)
	assert.Equal(t, first.ID, second.ID)
}
