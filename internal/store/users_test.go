package store

import (
	"fmt"
	"testing"

	"inkwell/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func directoryDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	return db
}

const testUserID = "55555555-5555-5555-5555-555555555555"

func TestDirectoryGetMissing(t *testing.T) {
	d := NewDirectory(directoryDB(t))

	user, err := d.Get(testUserID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if user != nil {
		t.Errorf("user = %v, want nil for a missing row", user)
	}
}

func TestDirectoryUpsertPreservesRole(t *testing.T) {
	d := NewDirectory(directoryDB(t))

	if err := d.Upsert(&models.User{ID: testUserID, Email: "pat@example.com", Name: "Pat"}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := d.SetRole(testUserID, "admin"); err != nil {
		t.Fatalf("SetRole: %v", err)
	}

	// Re-login refreshes profile fields but must not reset the role.
	if err := d.Upsert(&models.User{ID: testUserID, Email: "pat@example.com", Name: "Pat Renamed", Role: "user"}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	user, err := d.Get(testUserID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if user == nil {
		t.Fatal("user missing after upsert")
	}
	if user.Role != "admin" {
		t.Errorf("role = %q after re-login, want admin", user.Role)
	}
	if user.Name != "Pat Renamed" {
		t.Errorf("name = %q, want the refreshed value", user.Name)
	}
}

func TestDirectoryRoleOf(t *testing.T) {
	db := directoryDB(t)
	d := NewDirectory(db)

	if _, err := d.RoleOf(testUserID); !IsNotFound(err) {
		t.Errorf("RoleOf missing user err = %v, want not-found", err)
	}

	if err := db.Create(&models.User{ID: testUserID, Email: "pat@example.com"}).Error; err != nil {
		t.Fatalf("creating user: %v", err)
	}
	role, err := d.RoleOf(testUserID)
	if err != nil {
		t.Fatalf("RoleOf: %v", err)
	}
	if role != "user" {
		t.Errorf("role = %q, want the user default", role)
	}
}

func TestDirectoryUpdateProfileSkipsEmptyFields(t *testing.T) {
	d := NewDirectory(directoryDB(t))

	if err := d.Upsert(&models.User{ID: testUserID, Email: "pat@example.com", Name: "Pat", Username: "pat"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := d.UpdateProfile(testUserID, "", "", "https://cdn.example.com/new.png"); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	user, err := d.Get(testUserID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if user.Name != "Pat" || user.Username != "pat" {
		t.Errorf("profile fields were blanked: %+v", user)
	}
	if user.ProfilePic != "https://cdn.example.com/new.png" {
		t.Errorf("profile_pic = %q", user.ProfilePic)
	}
}
