package db_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pawws/pawws/internal/db"
	"github.com/pawws/pawws/internal/db/dbtest"
)

func TestMigrationsApplyAndRollBack(t *testing.T) {
	database := dbtest.Open(t)
	ctx := context.Background()

	version, err := db.Version(ctx, database.DB, "sqlite")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if version != 1 {
		t.Fatalf("version = %d, want 1", version)
	}

	if err := db.MigrateDown(ctx, database.DB, "sqlite"); err != nil {
		t.Fatalf("migrate down: %v", err)
	}
	if _, err := database.Exec(`SELECT 1 FROM donations`); err == nil {
		t.Fatal("donations table should be gone after rollback")
	}
}

func TestUnsupportedDriver(t *testing.T) {
	database := dbtest.Open(t)
	err := db.RunMigrations(context.Background(), database.DB, "mysql")
	if err == nil {
		t.Fatal("expected an error for an unsupported driver")
	}
}

func TestInTxRollsBackOnError(t *testing.T) {
	database := dbtest.Open(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := db.InTx(ctx, database, func(tx *sqlx.Tx) error {
		_, err := tx.Exec(`INSERT INTO users (id, email, password_hash, role, is_active, created_at)
		                   VALUES ('u1', 'a@example.com', 'x', 'donor', true, CURRENT_TIMESTAMP)`)
		if err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx error = %v, want boom", err)
	}

	var count int
	if err := database.Get(&count, `SELECT COUNT(*) FROM users`); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("users = %d, want 0 after rollback", count)
	}
}

func TestInTxCommits(t *testing.T) {
	database := dbtest.Open(t)

	err := db.InTx(context.Background(), database, func(tx *sqlx.Tx) error {
		_, err := tx.Exec(`INSERT INTO users (id, email, password_hash, role, is_active, created_at)
		                   VALUES ('u1', 'a@example.com', 'x', 'donor', true, CURRENT_TIMESTAMP)`)
		return err
	})
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}

	var count int
	if err := database.Get(&count, `SELECT COUNT(*) FROM users`); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("users = %d, want 1", count)
	}
}

func TestInTxRollsBackOnPanic(t *testing.T) {
	database := dbtest.Open(t)

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("panic did not propagate")
			}
		}()
		_ = db.InTx(context.Background(), database, func(tx *sqlx.Tx) error {
			_, err := tx.Exec(`INSERT INTO users (id, email, password_hash, role, is_active, created_at)
			                   VALUES ('u1', 'a@example.com', 'x', 'donor', true, CURRENT_TIMESTAMP)`)
			if err != nil {
				return err
			}
			panic("handler bug")
		})
	}()

	// The only SQLite connection must be back in the pool
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := database.PingContext(ctx); err != nil {
		t.Fatalf("ping after panic: %v", err)
	}

	var count int
	if err := database.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("users = %d, want 0 after rollback", count)
	}
}

func TestSchemaRejectsUnknownStatus(t *testing.T) {
	database := dbtest.Open(t)

	_, err := database.Exec(`INSERT INTO animals (id, name, admission_date, created_at)
	                         VALUES ('a1', 'Biscuit', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
	if err != nil {
		t.Fatalf("insert animal: %v", err)
	}
	_, err = database.Exec(`INSERT INTO milestones (id, animal_id, title, cost, status, created_at, updated_at)
	                        VALUES ('m1', 'a1', 'Surgery', 100, 'almost', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
	if err == nil {
		t.Fatal("expected CHECK constraint to reject an unknown milestone status")
	}
}
