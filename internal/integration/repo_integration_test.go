package integration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"taskmanager/internal/domain"
	"taskmanager/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

func applyMigrations(t *testing.T, db *pgxpool.Pool) {
	t.Helper()
	migDir := filepath.Join("..", "..", "internal", "migrations")
	files, err := os.ReadDir(migDir)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	for _, f := range files {
		b, err := os.ReadFile(filepath.Join(migDir, f.Name()))
		if err != nil {
			t.Fatalf("read file: %v", err)
		}
		if _, err := db.Exec(context.Background(), string(b)); err != nil {
			t.Fatalf("apply migration %s: %v", f.Name(), err)
		}
	}
}

func connect(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)

	applyMigrations(t, db)
	return db
}

func createUser(t *testing.T, repo *repository.UserRepository, email string) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:           uuid.New(),
		Name:         "Test",
		Email:        repository.NormalizeEmail(email),
		PasswordHash: "x",
	}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := connect(t)
	repo := repository.NewUserRepository(db)

	email := fmt.Sprintf("dup-%s@example.com", uuid.NewString())
	createUser(t, repo, email)

	dup := &domain.User{ID: uuid.New(), Name: "Other", Email: repository.NormalizeEmail(email), PasswordHash: "y"}
	err := repo.Create(context.Background(), dup)
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestUserRepository_GetByEmail_Normalizes(t *testing.T) {
	db := connect(t)
	repo := repository.NewUserRepository(db)

	email := fmt.Sprintf("case-%s@example.com", uuid.NewString())
	created := createUser(t, repo, email)

	got, err := repo.GetByEmail(context.Background(), "  "+toUpper(email)+"  ")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("expected user %s, got %s", created.ID, got.ID)
	}
}

func toUpper(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'a' && b[i] <= 'z' {
			b[i] -= 'a' - 'A'
		}
	}
	return string(b)
}

func seedTask(t *testing.T, repo *repository.TaskRepository, owner uuid.UUID, title string, priority domain.Priority, due *time.Time) *domain.Task {
	t.Helper()
	task := &domain.Task{
		ID:       uuid.New(),
		UserID:   owner,
		Title:    title,
		Status:   domain.StatusPending,
		Priority: priority,
		DueDate:  due,
	}
	if err := repo.Create(context.Background(), task); err != nil {
		t.Fatalf("create task %s: %v", title, err)
	}
	// keep created_at strictly increasing for the default sort assertions
	time.Sleep(5 * time.Millisecond)
	return task
}

func TestTaskRepository_SortByDueDate(t *testing.T) {
	db := connect(t)
	users := repository.NewUserRepository(db)
	tasks := repository.NewTaskRepository(db)
	ctx := context.Background()

	owner := createUser(t, users, fmt.Sprintf("sort-%s@example.com", uuid.NewString()))

	day := func(d int) *time.Time {
		ts := time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
		return &ts
	}
	seedTask(t, tasks, owner.ID, "third", domain.PriorityMedium, day(3))
	seedTask(t, tasks, owner.ID, "first", domain.PriorityMedium, day(1))
	seedTask(t, tasks, owner.ID, "second", domain.PriorityMedium, day(2))

	got, err := tasks.ListByOwner(ctx, owner.ID, repository.TaskFilter{Sort: repository.SortDueDate})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(got))
	}
	for i, want := range []string{"first", "second", "third"} {
		if got[i].Title != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, got[i].Title)
		}
	}

	// bogus sort keys never reach the repository; the zero filter means the
	// default order, newest first
	got, err = tasks.ListByOwner(ctx, owner.ID, repository.TaskFilter{})
	if err != nil {
		t.Fatalf("list default: %v", err)
	}
	for i, want := range []string{"second", "first", "third"} {
		if got[i].Title != want {
			t.Fatalf("default order position %d: expected %s, got %s", i, want, got[i].Title)
		}
	}
}

func TestTaskRepository_SortByPriorityRank(t *testing.T) {
	db := connect(t)
	users := repository.NewUserRepository(db)
	tasks := repository.NewTaskRepository(db)

	owner := createUser(t, users, fmt.Sprintf("rank-%s@example.com", uuid.NewString()))

	seedTask(t, tasks, owner.ID, "low", domain.PriorityLow, nil)
	seedTask(t, tasks, owner.ID, "high", domain.PriorityHigh, nil)
	seedTask(t, tasks, owner.ID, "medium", domain.PriorityMedium, nil)

	got, err := tasks.ListByOwner(context.Background(), owner.ID, repository.TaskFilter{Sort: repository.SortPriority})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i, want := range []string{"high", "medium", "low"} {
		if got[i].Title != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, got[i].Title)
		}
	}
}

func TestTaskRepository_OwnerScope(t *testing.T) {
	db := connect(t)
	users := repository.NewUserRepository(db)
	tasks := repository.NewTaskRepository(db)
	ctx := context.Background()

	alice := createUser(t, users, fmt.Sprintf("alice-%s@example.com", uuid.NewString()))
	bob := createUser(t, users, fmt.Sprintf("bob-%s@example.com", uuid.NewString()))

	mine := seedTask(t, tasks, alice.ID, "mine", domain.PriorityHigh, nil)
	seedTask(t, tasks, bob.ID, "theirs", domain.PriorityHigh, nil)

	got, err := tasks.ListByOwner(ctx, alice.ID, repository.TaskFilter{Priority: domain.PriorityHigh})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != mine.ID {
		t.Fatalf("expected only alice's task, got %d tasks", len(got))
	}
}

func TestTaskRepository_Delete(t *testing.T) {
	db := connect(t)
	users := repository.NewUserRepository(db)
	tasks := repository.NewTaskRepository(db)
	ctx := context.Background()

	owner := createUser(t, users, fmt.Sprintf("del-%s@example.com", uuid.NewString()))
	task := seedTask(t, tasks, owner.ID, "doomed", domain.PriorityLow, nil)

	if err := tasks.Delete(ctx, task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := tasks.GetByID(ctx, task.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := tasks.Delete(ctx, task.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
