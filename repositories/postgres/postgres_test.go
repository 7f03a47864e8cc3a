package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synapse-notes/backend/models"
	"github.com/synapse-notes/backend/repositories"
	"go.uber.org/zap"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return Wrap(sqlDB, zap.NewNop()), mock
}

var (
	userRowColumns   = []string{"id", "username", "email", "password_hash", "created_at", "updated_at"}
	folderRowColumns = []string{"id", "name", "user_id", "created_at", "updated_at"}
	noteRowColumns   = []string{"id", "title", "content", "folder_id", "created_at", "updated_at"}
)

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db, zap.NewNop())
	user := models.NewUser("ada", "ada@example.com", "hash")

	mock.ExpectExec("INSERT INTO users").
		WithArgs(user.ID, "ada", "ada@example.com", "hash", user.CreatedAt, user.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), user))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db, zap.NewNop())

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_username_key"})

	err := repo.Create(context.Background(), models.NewUser("ada", "ada@example.com", "hash"))
	assert.ErrorIs(t, err, repositories.ErrDuplicate)
	assert.Contains(t, err.Error(), "users_username_key")
}

func TestUserRepository_GetByUsername(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db, zap.NewNop())
	id := uuid.New()
	now := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE username = \\$1").
			WithArgs("ada").
			WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(id.String(), "ada", "ada@example.com", "hash", now, now))

		user, err := repo.GetByUsername(context.Background(), "ada")
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, "hash", user.PasswordHash)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE username = \\$1").
			WithArgs("nobody").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByUsername(context.Background(), "nobody")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db, zap.NewNop())
	id := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\$1").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(id.String(), "ada", "ada@example.com", "hash", now, now))

	user, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "ada", user.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ExistsByUsernameOrEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db, zap.NewNop())

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("ada", "ada@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByUsernameOrEmail(context.Background(), "ada", "ada@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFolderRepository_ListByUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFolderRepository(db, zap.NewNop())
	userID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM folders WHERE user_id = \\$1 ORDER BY created_at DESC").
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(folderRowColumns).
			AddRow(uuid.New().String(), "Chemistry", userID.String(), now, now).
			AddRow(uuid.New().String(), "Biology", userID.String(), now.Add(-time.Hour), now.Add(-time.Hour)))

	folders, err := repo.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, folders, 2)
	assert.Equal(t, "Chemistry", folders[0].Name)
	assert.Equal(t, userID, folders[1].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFolderRepository_ListByUser_Empty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFolderRepository(db, zap.NewNop())

	mock.ExpectQuery("SELECT (.+) FROM folders").
		WillReturnRows(sqlmock.NewRows(folderRowColumns))

	folders, err := repo.ListByUser(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, folders)
	assert.Empty(t, folders)
}

func TestFolderRepository_GetByID_OtherOwner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFolderRepository(db, zap.NewNop())
	id, userID := uuid.New(), uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM folders WHERE id = \\$1 AND user_id = \\$2").
		WithArgs(id, userID).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), id, userID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFolderRepository_Rename(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFolderRepository(db, zap.NewNop())
	id, userID := uuid.New(), uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery("UPDATE folders SET name = \\$1").
		WithArgs("Physics", sqlmock.AnyArg(), id, userID).
		WillReturnRows(sqlmock.NewRows(folderRowColumns).AddRow(id.String(), "Physics", userID.String(), now, now))

	folder, err := repo.Rename(context.Background(), id, userID, "Physics")
	require.NoError(t, err)
	assert.Equal(t, "Physics", folder.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFolderRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFolderRepository(db, zap.NewNop())
	id, userID := uuid.New(), uuid.New()

	t.Run("deleted", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM folders WHERE id = \\$1 AND user_id = \\$2").
			WithArgs(id, userID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(context.Background(), id, userID))
	})

	t.Run("not owned", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM folders").
			WithArgs(id, userID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(context.Background(), id, userID), repositories.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNoteRepository(db, zap.NewNop())
	id, userID, folderID := uuid.New(), uuid.New(), uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery("FROM notes n\\s+JOIN folders f").
		WithArgs(id, userID).
		WillReturnRows(sqlmock.NewRows(noteRowColumns).AddRow(id.String(), "Cells", "# Cells", folderID.String(), now, now))

	note, err := repo.GetByID(context.Background(), id, userID)
	require.NoError(t, err)
	assert.Equal(t, "Cells", note.Title)
	assert.Equal(t, folderID, note.FolderID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteRepository_ListByFolder(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNoteRepository(db, zap.NewNop())
	folderID, userID := uuid.New(), uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery("ORDER BY n.updated_at DESC").
		WithArgs(folderID, userID).
		WillReturnRows(sqlmock.NewRows(noteRowColumns).
			AddRow(uuid.New().String(), "Newest", "", folderID.String(), now, now).
			AddRow(uuid.New().String(), "Older", "", folderID.String(), now, now.Add(-time.Hour)))

	notes, err := repo.ListByFolder(context.Background(), folderID, userID)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "Newest", notes[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteRepository_Update(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNoteRepository(db, zap.NewNop())
	id, userID := uuid.New(), uuid.New()

	mock.ExpectQuery("UPDATE notes n SET title = \\$1").
		WithArgs("New", "body", sqlmock.AnyArg(), id, userID).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), id, userID, "New", "body")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNoteRepository(db, zap.NewNop())
	id, userID := uuid.New(), uuid.New()

	mock.ExpectExec("DELETE FROM notes n\\s+USING folders f").
		WithArgs(id, userID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Delete(context.Background(), id, userID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionManager(t *testing.T) {
	t.Run("statements inside the transaction commit together", func(t *testing.T) {
		db, mock := newMockDB(t)
		tm := NewTransactionManager(db, zap.NewNop())
		folders := NewFolderRepository(db, zap.NewNop())
		notes := NewNoteRepository(db, zap.NewNop())
		folderID, userID := uuid.New(), uuid.New()
		note := models.NewNote(folderID, "Cells", "")
		now := time.Now()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM folders").
			WithArgs(folderID, userID).
			WillReturnRows(sqlmock.NewRows(folderRowColumns).AddRow(folderID, "Biology", userID, now, now))
		mock.ExpectExec("INSERT INTO notes").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		tx, err := tm.Begin(context.Background())
		require.NoError(t, err)
		_, ok := transactionFrom(tx.Context())
		assert.True(t, ok)

		_, err = folders.GetByID(tx.Context(), folderID, userID)
		require.NoError(t, err)
		require.NoError(t, notes.Create(tx.Context(), note))
		require.NoError(t, tx.Commit())
		assert.NoError(t, tx.Rollback(), "rollback after commit is a no-op")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback discards the work", func(t *testing.T) {
		db, mock := newMockDB(t)
		tm := NewTransactionManager(db, zap.NewNop())

		mock.ExpectBegin()
		mock.ExpectRollback()

		tx, err := tm.Begin(context.Background())
		require.NoError(t, err)
		assert.NoError(t, tx.Rollback())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure", func(t *testing.T) {
		db, mock := newMockDB(t)
		tm := NewTransactionManager(db, zap.NewNop())

		mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

		_, err := tm.Begin(context.Background())
		assert.ErrorContains(t, err, "failed to begin transaction")
	})

	t.Run("queries outside a transaction use the pool", func(t *testing.T) {
		db, _ := newMockDB(t)
		assert.Equal(t, Executor(db.DB), GetExecutor(context.Background(), db))
	})
}

func TestDB_InitSchema(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, db.InitSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_HealthCheck(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()
	db := Wrap(sqlDB, zap.NewNop())

	mock.ExpectPing()
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	assert.NoError(t, db.HealthCheck(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTranslateError(t *testing.T) {
	assert.ErrorIs(t, translateError(sql.ErrNoRows), repositories.ErrNotFound)
	assert.ErrorIs(t, translateError(&pq.Error{Code: "23505"}), repositories.ErrDuplicate)

	other := &pq.Error{Code: "23503"}
	assert.Equal(t, other, translateError(other))
}
