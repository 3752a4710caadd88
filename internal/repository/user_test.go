package repository

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"stackit/internal/cache"
	"stackit/internal/models"
	"stackit/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	return gormDB, mock
}

func TestUserRepository_GetByID(t *testing.T) {
	cache.SetClient(nil)
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	tests := []struct {
		name          string
		userID        uint
		mockBehavior  func()
		expectedUser  *models.User
		expectedError string
	}{
		{
			name:   "Success",
			userID: 1,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(1, 1).
					WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "role"}).AddRow(1, "alice", "alice@example.com", "user"))
			},
			expectedUser: &models.User{ID: 1, Username: "alice", Email: "alice@example.com", Role: models.RoleUser},
		},
		{
			name:   "Not Found",
			userID: 2,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(2, 1).
					WillReturnError(gorm.ErrRecordNotFound)
			},
			expectedError: models.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()

			user, err := repo.GetByID(ctx, tt.userID)
			if tt.expectedError != "" {
				assert.True(t, models.IsCode(err, tt.expectedError), "got %v", err)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedUser.Username, user.Username)
				assert.Equal(t, tt.expectedUser.Role, user.Role)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByID_UsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = cache.Close() })

	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "cached", models.RoleUser)

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "cached", got.Username)
	assert.True(t, mr.Exists(cache.UserKey(u.ID)))

	// role changes go through the repository and must drop the cached copy
	require.NoError(t, repo.SetRole(ctx, u.ID, models.RoleAdmin))
	assert.False(t, mr.Exists(cache.UserKey(u.ID)))

	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)
}

func TestUserRepository_PromoteToAdmin_SQL(t *testing.T) {
	cache.SetClient(nil)
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET "role"=\$1,"updated_at"=\$2 WHERE`).
		WithArgs(models.RoleAdmin, sqlmock.AnyArg(), 5, models.RoleUser).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	promoted, err := repo.PromoteToAdmin(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, promoted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	cache.SetClient(nil)
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Username: "bob", Email: "bob@example.com", Password: "x"}))

	err := repo.Create(ctx, &models.User{Username: "bob", Email: "other@example.com", Password: "x"})
	assert.True(t, models.IsCode(err, models.CodeConflict), "got %v", err)

	err = repo.UpdateProfile(ctx, 1, map[string]any{"email": "bob@example.com"})
	assert.NoError(t, err)

	require.NoError(t, repo.Create(ctx, &models.User{Username: "carol", Email: "carol@example.com", Password: "x"}))
	err = repo.UpdateProfile(ctx, 2, map[string]any{"username": "bob"})
	assert.True(t, models.IsCode(err, models.CodeConflict), "got %v", err)
}

func TestUserRepository_CreateDefaultsRole(t *testing.T) {
	cache.SetClient(nil)
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &models.User{Username: "dora", Email: "dora@example.com", Password: "x"}
	require.NoError(t, repo.Create(ctx, u))

	stored, err := repo.GetByEmail(ctx, "dora@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, stored.Role)
	assert.False(t, stored.IsBanned)

	missing, err := repo.GetByEmail(ctx, "nobody@example.com")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_SetBanned(t *testing.T) {
	cache.SetClient(nil)
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "eve", models.RoleUser)

	require.NoError(t, repo.SetBanned(ctx, u.ID, true))
	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsBanned)

	err = repo.SetBanned(ctx, 999, true)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestUserRepository_UpdateAccess_SingleStatement(t *testing.T) {
	cache.SetClient(nil)
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	role := models.RoleAdmin
	banned := true

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET "is_banned"=$1,"role"=$2`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	require.NoError(t, repo.UpdateAccess(ctx, 7, &role, &banned))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET "is_banned"=$1,"role"=$2`)).
		WillReturnError(fmt.Errorf("connection reset"))
	mock.ExpectRollback()
	err := repo.UpdateAccess(ctx, 7, &role, &banned)
	assert.True(t, models.IsCode(err, models.CodeInternal))

	// nothing to write issues no statement
	require.NoError(t, repo.UpdateAccess(ctx, 7, nil, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateAccess(t *testing.T) {
	cache.SetClient(nil)
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "mallory", models.RoleUser)

	role := models.RoleAdmin
	banned := true
	require.NoError(t, repo.UpdateAccess(ctx, u.ID, &role, &banned))
	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)
	assert.True(t, got.IsBanned)

	err = repo.UpdateAccess(ctx, 999, &role, nil)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func acceptAnswers(t *testing.T, db *gorm.DB, asker string, authorID uint, n int) {
	t.Helper()
	owner := testutil.CreateUser(t, db, asker, models.RoleUser)
	for i := 0; i < n; i++ {
		q := testutil.CreateQuestion(t, db, owner.ID, fmt.Sprintf("question %d", i))
		testutil.CreateAnswer(t, db, q.ID, authorID, true)
	}
}

func TestUserRepository_FindPromotionCandidates(t *testing.T) {
	cache.SetClient(nil)
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	ten := testutil.CreateUser(t, db, "ten", models.RoleUser)
	nine := testutil.CreateUser(t, db, "nine", models.RoleUser)
	admin := testutil.CreateUser(t, db, "already", models.RoleAdmin)
	withDeleted := testutil.CreateUser(t, db, "withdeleted", models.RoleUser)

	acceptAnswers(t, db, "asker1", ten.ID, 10)
	acceptAnswers(t, db, "asker2", nine.ID, 9)
	acceptAnswers(t, db, "asker3", admin.ID, 12)
	acceptAnswers(t, db, "asker4", withDeleted.ID, 10)

	// an unaccepted answer never counts
	q := testutil.CreateQuestion(t, db, nine.ID, "extra")
	testutil.CreateAnswer(t, db, q.ID, nine.ID, false)

	// flagged and soft-deleted accepted answers still count
	setFirstAnswerStatus(t, db, ten.ID, models.StatusFlagged)
	setFirstAnswerStatus(t, db, withDeleted.ID, models.StatusDeleted)

	ids, err := repo.FindPromotionCandidates(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint{ten.ID, withDeleted.ID}, ids)
}

func setFirstAnswerStatus(t *testing.T, db *gorm.DB, userID uint, status models.ContentStatus) {
	t.Helper()
	var a models.Answer
	require.NoError(t, db.Where("user_id = ?", userID).Order("id ASC").First(&a).Error)
	require.NoError(t, db.Model(&models.Answer{}).Where("id = ?", a.ID).Update("status", status).Error)
}

func TestUserRepository_PromoteToAdmin_Idempotent(t *testing.T) {
	cache.SetClient(nil)
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "frank", models.RoleUser)

	promoted, err := repo.PromoteToAdmin(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, promoted)

	promoted, err = repo.PromoteToAdmin(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, promoted)

	admins, err := repo.ListByRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "frank", admins[0].Username)
}
