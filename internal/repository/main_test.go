package repository

import (
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupMockDB returns a postgres-dialect gorm handle backed by sqlmock, for
// asserting the exact SQL of a call.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// setupTestDB returns a migrated in-memory sqlite database.
func setupTestDB(t *testing.T) *gorm.DB {
	return testutil.NewDB(t)
}

func seedUser(t *testing.T, db *gorm.DB, name, email string) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: email, Password: "hash", Avatar: name + ".png"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedPost(t *testing.T, db *gorm.DB, owner uint, slug string) *models.Post {
	t.Helper()
	p := &models.Post{
		Title:   "sample title",
		Caption: "sample caption",
		Slug:    slug,
		Body:    models.EmptyDocument(),
		UserID:  owner,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func seedComment(t *testing.T, db *gorm.DB, post, owner uint, parent *uint, check bool) *models.Comment {
	t.Helper()
	c := &models.Comment{Desc: "comment", PostID: post, UserID: owner, ParentID: parent}
	require.NoError(t, db.Create(c).Error)
	if check {
		require.NoError(t, db.Model(c).Update("checked", true).Error)
		c.Check = true
	}
	return c
}
