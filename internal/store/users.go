package store

import (
	"errors"

	"inkwell/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Directory reads and writes the persisted user records that shadow the
// identity provider's accounts. Roles live here, not in auth metadata.
type Directory struct {
	db *gorm.DB
}

func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{db: db}
}

// Get returns the user record, or (nil, nil) when no row exists.
func (d *Directory) Get(id string) (*models.User, error) {
	var user models.User
	if err := d.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, Wrap(Classify(err), err)
	}
	return &user, nil
}

// RoleOf returns the persisted role for a user. Missing rows surface as a
// KindNotFound error so the session manager can fall back to auth metadata.
func (d *Directory) RoleOf(id string) (string, error) {
	user, err := d.Get(id)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", Wrap(KindNotFound, gorm.ErrRecordNotFound)
	}
	if user.Role == "" {
		return "user", nil
	}
	return user.Role, nil
}

// Upsert creates or refreshes a user row from identity-provider data. The
// role column is deliberately left out of the update set: a re-login must not
// reset an admin back to "user".
func (d *Directory) Upsert(user *models.User) error {
	err := d.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "name", "username", "profile_pic", "updated_at"}),
	}).Create(user).Error
	return Wrap(Classify(err), err)
}

// UpdateProfile applies a profile edit. Empty fields are skipped so partial
// updates do not blank out existing values.
func (d *Directory) UpdateProfile(id, name, username, profilePic string) error {
	updates := map[string]interface{}{}
	if name != "" {
		updates["name"] = name
	}
	if username != "" {
		updates["username"] = username
	}
	if profilePic != "" {
		updates["profile_pic"] = profilePic
	}
	if len(updates) == 0 {
		return nil
	}
	err := d.db.Model(&models.User{}).Where("id = ?", id).Updates(updates).Error
	return Wrap(Classify(err), err)
}

// SetRole stamps a role onto a user row.
func (d *Directory) SetRole(id, role string) error {
	err := d.db.Model(&models.User{}).Where("id = ?", id).Update("role", role).Error
	return Wrap(Classify(err), err)
}
