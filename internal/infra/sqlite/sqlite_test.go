package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/aliskhannn/times-table-bot/internal/domain/entities"
	"github.com/aliskhannn/times-table-bot/internal/repository"
	"github.com/aliskhannn/times-table-bot/internal/service"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestUserRepository_Save(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewUserRepository(db)

	exists, err := repo.Exists(ctx, 42)
	if err != nil || exists {
		t.Fatalf("expected no user, got exists=%v err=%v", exists, err)
	}

	created, err := repo.Save(ctx, entities.NewUser(42, 100))
	if err != nil || !created {
		t.Fatalf("expected created, got %v err=%v", created, err)
	}

	created, err = repo.Save(ctx, entities.NewUser(42, 200))
	if err != nil || created {
		t.Fatalf("expected update, got created=%v err=%v", created, err)
	}

	var chatID int64
	if err := sqlx.GetContext(ctx, db, &chatID, `SELECT chat_id FROM users WHERE id = ?`, 42); err != nil {
		t.Fatalf("read user: %v", err)
	}
	if chatID != 200 {
		t.Fatalf("expected the chat to be refreshed, got %d", chatID)
	}
}

func TestSettingsRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	users := NewUserRepository(db)
	repo := NewSettingsRepository(db)

	if _, err := users.Save(ctx, entities.NewUser(1, 1)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, err := repo.GetByUserID(ctx, 1); !errors.Is(err, repository.ErrSettingsNotFound) {
		t.Fatalf("expected ErrSettingsNotFound, got %v", err)
	}
	if err := repo.UpdateQuizMode(ctx, 1, entities.ModeDivision); !errors.Is(err, repository.ErrSettingsNotFound) {
		t.Fatalf("expected ErrSettingsNotFound on update, got %v", err)
	}

	if err := repo.Create(ctx, 1); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, 1); err != nil {
		t.Fatalf("second Create must be a no-op: %v", err)
	}

	s, err := repo.GetByUserID(ctx, 1)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if s.QuizMode != entities.ModeMultiplication {
		t.Fatalf("expected default multiplication, got %q", s.QuizMode)
	}

	if err := repo.UpdateQuizMode(ctx, 1, entities.ModeDivision); err != nil {
		t.Fatalf("UpdateQuizMode: %v", err)
	}
	s, err = repo.GetByUserID(ctx, 1)
	if err != nil || s.QuizMode != entities.ModeDivision {
		t.Fatalf("expected division, got %+v err=%v", s, err)
	}
}

func TestTransactor_EnsureUserThroughService(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	users := service.NewUserService(NewTransactor(db))

	if err := users.EnsureUser(ctx, 5, 50); err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	if err := users.EnsureUser(ctx, 5, 50); err != nil {
		t.Fatalf("second EnsureUser: %v", err)
	}

	s, err := NewSettingsRepository(db).GetByUserID(ctx, 5)
	if err != nil {
		t.Fatalf("settings should be created with the user: %v", err)
	}
	if s.PreferredMode() != entities.ModeMultiplication {
		t.Fatalf("unexpected preferred mode %q", s.PreferredMode())
	}
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	boom := errors.New("boom")

	err := NewTransactor(db).WithinTx(ctx, func(ctx context.Context, users service.UserRepository, _ service.SettingsRepository) error {
		if _, err := users.Save(ctx, entities.NewUser(9, 9)); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	exists, err := NewUserRepository(db).Exists(ctx, 9)
	if err != nil || exists {
		t.Fatalf("user must be rolled back, exists=%v err=%v", exists, err)
	}
}

func TestSettingsService_RemembersModeOnSQLite(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	if _, err := NewUserRepository(db).Save(ctx, entities.NewUser(3, 3)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	prefs := service.NewSettingsService(NewSettingsRepository(db))
	if err := prefs.UpdateQuizMode(ctx, 3, entities.ModeDivision); err != nil {
		t.Fatalf("UpdateQuizMode: %v", err)
	}

	s, err := prefs.GetOrCreate(ctx, 3)
	if err != nil || s.QuizMode != entities.ModeDivision {
		t.Fatalf("expected division, got %+v err=%v", s, err)
	}
}
