package repository_test

import (
	"context"
	"testing"
	"time"

	"openkanban/internal/model"
	"openkanban/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		DriverName:           "postgres",
		Conn:                 db,
		PreferSimpleProtocol: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	assert.NoError(t, err)

	return gormDB, mock
}

func TestBoardRepository_Create(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	boardRepo := repository.NewBoardRepository(gormDB)

	boardID := uuid.New()
	board := &model.Board{Slug: "team-alpha"}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "boards"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(boardID.String()))
	mock.ExpectCommit()

	// Act
	err := boardRepo.Create(context.Background(), board)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, boardID, board.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardRepository_GetBySlug_Found(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	boardRepo := repository.NewBoardRepository(gormDB)

	boardID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM "boards" WHERE slug = .* LIMIT .*`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "slug", "created_at", "updated_at"}).
			AddRow(boardID.String(), "team-alpha", now, now))

	// Act
	board, err := boardRepo.GetBySlug(context.Background(), "team-alpha")

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, board)
	assert.Equal(t, boardID, board.ID)
	assert.Equal(t, "team-alpha", board.Slug)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardRepository_GetBySlug_NotFound(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	boardRepo := repository.NewBoardRepository(gormDB)

	mock.ExpectQuery(`SELECT .* FROM "boards" WHERE slug = .* LIMIT .*`).
		WillReturnError(gorm.ErrRecordNotFound)

	// Act
	board, err := boardRepo.GetBySlug(context.Background(), "missing")

	// Assert
	assert.NoError(t, err) // absence is not an error
	assert.Nil(t, board)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardRepository_GetBySlug_Error(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	boardRepo := repository.NewBoardRepository(gormDB)

	mock.ExpectQuery(`SELECT .* FROM "boards" WHERE slug = .* LIMIT .*`).
		WillReturnError(assert.AnError)

	// Act
	board, err := boardRepo.GetBySlug(context.Background(), "team-alpha")

	// Assert
	assert.Error(t, err)
	assert.Nil(t, board)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardRepository_GetFull(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	boardRepo := repository.NewBoardRepository(gormDB)

	boardID, columnID, taskID := uuid.New(), uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM "boards" WHERE slug = .* LIMIT .*`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "slug", "created_at", "updated_at"}).
			AddRow(boardID.String(), "team-alpha", now, now))
	mock.ExpectQuery(`SELECT .* FROM "columns" WHERE "columns"."board_id" = .* ORDER BY position`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "board_id", "title", "position", "is_collapsed", "created_at"}).
			AddRow(columnID.String(), boardID.String(), "To Do", 0, false, now))
	mock.ExpectQuery(`SELECT .* FROM "tasks" WHERE "tasks"."column_id" = .* ORDER BY position`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "column_id", "title", "description", "priority", "position", "created_at", "updated_at"}).
			AddRow(taskID.String(), columnID.String(), "Fix bug", nil, "high", 0, now, now))

	// Act
	full, err := boardRepo.GetFull(context.Background(), "team-alpha")

	// Assert
	assert.NoError(t, err)
	if assert.NotNil(t, full) {
		assert.Equal(t, boardID, full.Board.ID)
		if assert.Len(t, full.Columns, 1) {
			assert.Equal(t, "To Do", full.Columns[0].Title)
			if assert.Len(t, full.Columns[0].Tasks, 1) {
				assert.Equal(t, taskID, full.Columns[0].Tasks[0].ID)
				assert.Equal(t, model.PriorityHigh, full.Columns[0].Tasks[0].Priority)
				assert.Nil(t, full.Columns[0].Tasks[0].Description)
			}
		}
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardRepository_GetFull_NotFound(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	boardRepo := repository.NewBoardRepository(gormDB)

	mock.ExpectQuery(`SELECT .* FROM "boards" WHERE slug = .* LIMIT .*`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "slug", "created_at", "updated_at"}))

	// Act
	full, err := boardRepo.GetFull(context.Background(), "missing")

	// Assert
	assert.NoError(t, err)
	assert.Nil(t, full)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardRepository_Delete_NotFound(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	boardRepo := repository.NewBoardRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "boards"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	// Act
	err := boardRepo.Delete(context.Background(), uuid.New())

	// Assert
	assert.ErrorIs(t, err, repository.ErrBoardNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
