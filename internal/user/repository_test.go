package user_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/eduback/internal/bootstrap"
	"github.com/eduback/internal/model"
	"github.com/eduback/internal/user"
	"github.com/eduback/pkg/config"
	"github.com/eduback/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(&config.DatabaseConfig{
		Driver:       "sqlite",
		MaxIdleConns: 1,
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	require.NoError(t, bootstrap.Migrate(db))
	return db
}

func TestFindByEmailAndUsername(t *testing.T) {
	db := setupDB(t)
	repo := user.NewRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.User{
		Email: "a@example.com", Username: "alpha", Password: "x", Status: model.UserStatusActive,
	}))

	u, err := repo.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "alpha", u.Username)

	u, err = repo.FindByUsername(ctx, "alpha")
	require.NoError(t, err)
	require.NotNil(t, u)

	// 不存在返回 nil 而不是错误
	u, err = repo.FindByEmail(ctx, "missing@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestUpdateStatus(t *testing.T) {
	db := setupDB(t)
	repo := user.NewRepository(db)
	ctx := context.Background()

	u := &model.User{Email: "b@example.com", Username: "beta", Password: "x", Status: model.UserStatusActive}
	require.NoError(t, repo.Create(ctx, u))

	require.NoError(t, repo.UpdateStatus(ctx, u.ID, model.UserStatusDisabled))

	stored, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.False(t, stored.IsActive())
}

func TestSearchFiltersAndPaginates(t *testing.T) {
	db := setupDB(t)
	repo := user.NewRepository(db)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		status := model.UserStatusActive
		if i%5 == 0 {
			status = model.UserStatusDisabled
		}
		require.NoError(t, repo.Create(ctx, &model.User{
			Email:    fmt.Sprintf("u%02d@example.com", i),
			Username: fmt.Sprintf("user%02d", i),
			Password: "x",
			Status:   status,
		}))
	}

	result, err := repo.Search(ctx, &user.ListQuery{Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(25), result.Total)
	assert.Len(t, result.List, 10)
	assert.Equal(t, 2, result.Page)

	result, err = repo.Search(ctx, &user.ListQuery{Keyword: "user01"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)

	result, err = repo.Search(ctx, &user.ListQuery{Status: model.UserStatusDisabled})
	require.NoError(t, err)
	assert.Equal(t, int64(5), result.Total)
}
