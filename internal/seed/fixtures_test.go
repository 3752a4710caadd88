package seed

import (
	"os"
	"path/filepath"
	"testing"

	"stackit/internal/models"
	"stackit/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFixtures = `
users:
  - username: alice
    role: admin
  - username: bob
  - username: mallory
    banned: true
questions:
  - author: bob
    title: How do I cancel a context?
    body: I start a goroutine and want to stop it.
    tags: [Go, concurrency]
    answers:
      - author: alice
        body: Call the cancel func returned by WithCancel.
        accepted: true
      - author: mallory
        body: Just kill the process.
  - author: alice
    title: Old announcement
    status: deleted
`

func TestParseFixtures(t *testing.T) {
	fx, err := ParseFixtures([]byte(sampleFixtures))
	require.NoError(t, err)
	assert.Len(t, fx.Users, 3)
	require.Len(t, fx.Questions, 2)
	assert.Equal(t, []string{"Go", "concurrency"}, fx.Questions[0].Tags)
	assert.True(t, fx.Questions[0].Answers[0].Accepted)
}

func TestParseFixtures_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"not yaml", "users: [unclosed"},
		{"missing username", "users:\n  - role: user\n"},
		{"bad role", "users:\n  - username: a\n    role: guest\n"},
		{"unknown author", "users:\n  - username: a\nquestions:\n  - author: b\n    title: t\n"},
		{"bad status", "users:\n  - username: a\nquestions:\n  - author: a\n    title: t\n    status: archived\n"},
		{"two accepted", "users:\n  - username: a\nquestions:\n  - author: a\n    title: t\n    answers:\n      - {author: a, accepted: true}\n      - {author: a, accepted: true}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFixtures([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestApplyFixtures(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	path := filepath.Join(t.TempDir(), "fixtures.yml")
	require.NoError(t, os.WriteFile(path, []byte(sampleFixtures), 0o600))

	fx, err := LoadFixtures(path)
	require.NoError(t, err)
	sum, err := ApplyFixtures(db, fx, Options{SkipBcrypt: true})
	require.NoError(t, err)
	assert.Equal(t, &Summary{Users: 3, Questions: 2, Answers: 2, Accepted: 1}, sum)

	var alice, mallory models.User
	require.NoError(t, db.Where("username = ?", "alice").First(&alice).Error)
	require.NoError(t, db.Where("username = ?", "mallory").First(&mallory).Error)
	assert.Equal(t, models.RoleAdmin, alice.Role)
	assert.True(t, mallory.IsBanned)

	var tags []models.Tag
	require.NoError(t, db.Order("name").Find(&tags).Error)
	require.Len(t, tags, 2)
	assert.Equal(t, "concurrency", tags[0].Name)
	assert.Equal(t, "go", tags[1].Name)

	var deleted models.Question
	require.NoError(t, db.Where("title = ?", "Old announcement").First(&deleted).Error)
	assert.Equal(t, models.StatusDeleted, deleted.Status)
}

func TestLoadFixtures_MissingFile(t *testing.T) {
	_, err := LoadFixtures(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}
