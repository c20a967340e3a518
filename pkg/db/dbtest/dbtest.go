// Package dbtest opens throwaway sqlite databases carrying the full schema.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/characters-analyzer/backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open returns an isolated in-memory database with every model migrated and
// foreign keys enforced. The database is discarded when the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return conn
}

// Catalog holds the reference rows seeded by SeedCatalog.
type Catalog struct {
	Weapon    models.Weapon
	Element   models.Element
	Region    models.Region
	Character models.Character
	Other     models.Character
	Set       models.Set
	MainStat  models.Stat
	SubStats  []models.Stat
}

// SeedCatalog inserts a small set of lookup rows and two characters.
func SeedCatalog(t testing.TB, conn *gorm.DB) Catalog {
	t.Helper()

	c := Catalog{
		Weapon:   models.Weapon{Title: "Sword"},
		Element:  models.Element{Title: "Pyro"},
		Region:   models.Region{Title: "Mondstadt"},
		Set:      models.Set{Title: "Crimson Witch of Flames", Description: "Pyro DMG Bonus +15%"},
		MainStat: models.Stat{Name: "ATK%"},
		SubStats: []models.Stat{
			{Name: "CRIT Rate"},
			{Name: "CRIT DMG"},
			{Name: "Energy Recharge"},
		},
	}
	mustCreate(t, conn, &c.Weapon)
	mustCreate(t, conn, &c.Element)
	mustCreate(t, conn, &c.Region)
	mustCreate(t, conn, &c.Set)
	mustCreate(t, conn, &c.MainStat)
	for i := range c.SubStats {
		mustCreate(t, conn, &c.SubStats[i])
	}

	c.Character = models.Character{
		Name:      "Diluc",
		Legendary: true,
		WeaponID:  &c.Weapon.ID,
		ElementID: &c.Element.ID,
		RegionID:  &c.Region.ID,
	}
	c.Other = models.Character{Name: "Amber", WeaponID: &c.Weapon.ID, ElementID: &c.Element.ID, RegionID: &c.Region.ID}
	mustCreate(t, conn, &c.Character)
	mustCreate(t, conn, &c.Other)
	return c
}

// CreateUser inserts a user with a placeholder credential hash.
func CreateUser(t testing.TB, conn *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{Username: username, PasswordHash: "argon2id$test"}
	mustCreate(t, conn, &user)
	return user
}

func mustCreate(t testing.TB, conn *gorm.DB, value any) {
	t.Helper()
	if err := conn.Create(value).Error; err != nil {
		t.Fatalf("seed %T: %v", value, err)
	}
}
