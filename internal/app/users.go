package app

import (
	"context"
	"strings"

	"fintrack/internal/core"
)

// SettingsPatch holds the settings to change; nil fields are kept.
type SettingsPatch struct {
	Currency *string `json:"currency"`
	DarkMode *bool   `json:"darkMode"`
}

func validUser(u core.User) error {
	if err := u.Validate(); err != nil {
		if err == core.ErrEmptyName {
			return invalid("name", err)
		}
		return invalid("role", err)
	}
	return nil
}

// AddUser stores a new user. An empty role means viewer.
func (c *Controller) AddUser(ctx context.Context, u core.User) (core.User, error) {
	_, err := c.apply(ctx, "add_user", func(doc *core.Document) error {
		u.ID = c.newID()
		if u.Role == "" {
			u.Role = core.RoleViewer
		}
		if err := validUser(u); err != nil {
			return err
		}
		doc.Users = append(doc.Users, u)
		return nil
	})
	if err != nil && !isPersist(err) {
		return core.User{}, err
	}
	return u, err
}

// DeleteUser removes a user. The seeded owner is refused.
func (c *Controller) DeleteUser(ctx context.Context, id string) error {
	if id == core.OwnerID {
		return ErrUndeletableUser
	}
	_, err := c.apply(ctx, "delete_user", func(doc *core.Document) error {
		for i, u := range doc.Users {
			if u.ID == id {
				doc.Users = append(doc.Users[:i], doc.Users[i+1:]...)
				if doc.CurrentUser == id {
					doc.CurrentUser = core.OwnerID
				}
				return nil
			}
		}
		return notFound("user", id)
	})
	return err
}

// RenameCurrentUser changes the name of the signed in user.
func (c *Controller) RenameCurrentUser(ctx context.Context, name string) (core.User, error) {
	var out core.User
	_, err := c.apply(ctx, "rename_current_user", func(doc *core.Document) error {
		if strings.TrimSpace(name) == "" {
			return invalid("name", core.ErrEmptyName)
		}
		for i, u := range doc.Users {
			if u.ID == doc.CurrentUser {
				doc.Users[i].Name = name
				out = doc.Users[i]
				return nil
			}
		}
		return notFound("user", doc.CurrentUser)
	})
	if err != nil && !isPersist(err) {
		return core.User{}, err
	}
	return out, err
}

// UpdateSettings merges patch into the settings.
func (c *Controller) UpdateSettings(ctx context.Context, patch SettingsPatch) (core.Settings, error) {
	var out core.Settings
	_, err := c.apply(ctx, "update_settings", func(doc *core.Document) error {
		if patch.Currency != nil {
			if strings.TrimSpace(*patch.Currency) == "" {
				return invalid("currency", core.ErrEmptyName)
			}
			doc.Settings.Currency = *patch.Currency
		}
		if patch.DarkMode != nil {
			doc.Settings.DarkMode = *patch.DarkMode
		}
		out = doc.Settings
		return nil
	})
	if err != nil && !isPersist(err) {
		return core.Settings{}, err
	}
	return out, err
}
