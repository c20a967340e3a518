package repo

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/characters-analyzer/backend/pkg/db/dbtest"
	"github.com/characters-analyzer/backend/pkg/db/models"
	"gorm.io/gorm"
)

func TestNewBaseStoresConnection(t *testing.T) {
	db := dbtest.Open(t)
	base := NewBase(db)

	if base.db != db {
		t.Fatalf("expected base db to match provided connection")
	}
}

func TestBaseDB_BindsContext(t *testing.T) {
	db := dbtest.Open(t)
	base := NewBase(db)

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	withCtx := base.DB(ctx)

	if withCtx.Statement == nil || withCtx.Statement.Context != ctx {
		t.Fatalf("expected context to flow through")
	}

	withoutCtx := base.DB(nil)
	if withoutCtx != db {
		t.Fatalf("expected nil context to return raw connection")
	}
}

func TestBaseTxRollsBackOnError(t *testing.T) {
	db := dbtest.Open(t)
	base := NewBase(db)

	err := base.Tx(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Create(&models.Region{Title: "Natlan"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected error to propagate")
	}

	var count int64
	db.Model(&models.Region{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected rollback, found %d rows", count)
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(fmt.Errorf("load: %w", gorm.ErrRecordNotFound)) {
		t.Fatal("expected wrapped ErrRecordNotFound to match")
	}
	if IsNotFound(errors.New("other")) {
		t.Fatal("unexpected match")
	}
}
