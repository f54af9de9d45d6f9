package product

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus/hooks/test"
)

func newMockRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	log, _ := test.NewNullLogger()
	return NewPostgresRepository(db, log), mock, func() { db.Close() }
}

func TestPostgresRepository_FindByID(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	rows := sqlmock.NewRows([]string{"id", "title", "price"}).AddRow(4, "Fallout", 199)
	mock.ExpectQuery(`SELECT id, title, price\s+FROM products\s+WHERE id`).WithArgs(4).WillReturnRows(rows)
	mock.ExpectQuery(`SELECT id, title, price\s+FROM products\s+WHERE id`).WithArgs(5).WillReturnError(sql.ErrNoRows)

	p, err := repo.FindByID(context.Background(), 4)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if p.Title != "Fallout" || p.Price != 199 {
		t.Fatalf("unexpected product %+v", p)
	}

	if _, err := repo.FindByID(context.Background(), 5); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresRepository_List(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	rows := sqlmock.NewRows([]string{"id", "title", "price"}).
		AddRow(4, "Baldur's Gate", 399).
		AddRow(5, "Icewind Dale", 499)
	mock.ExpectQuery(`FROM products\s+ORDER BY id\s+LIMIT`).WithArgs(3, 3).WillReturnRows(rows)

	got, err := repo.List(context.Background(), 3, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != 4 || got[1].ID != 5 {
		t.Fatalf("unexpected products %+v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresRepository_Count(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	n, err := repo.Count(context.Background())
	if err != nil || n != 5 {
		t.Fatalf("expected 5, got %d %v", n, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresRepository_CreateMapsUniqueViolation(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectQuery("INSERT INTO products").WithArgs("Fallout", 199).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
	mock.ExpectQuery("INSERT INTO products").WithArgs("Fallout", 199).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "products_title_key"})

	p, err := repo.Create(context.Background(), New("Fallout", 199))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID != 9 {
		t.Fatalf("expected id 9, got %d", p.ID)
	}

	if _, err := repo.Create(context.Background(), New("Fallout", 199)); !errors.Is(err, ErrTitleTaken) {
		t.Fatalf("expected ErrTitleTaken, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresRepository_UpdateAndDeleteMissing(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectExec("UPDATE products").WithArgs("New", 10, 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE products").WithArgs("New", 10, 2).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM products").WithArgs(1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM products").WithArgs(1).WillReturnResult(sqlmock.NewResult(0, 0))

	ctx := context.Background()
	if _, err := repo.Update(ctx, Product{ID: 1, Title: "New", Price: 10}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := repo.Update(ctx, Product{ID: 2, Title: "New", Price: 10}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
