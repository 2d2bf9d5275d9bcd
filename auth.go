package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// resolveIdentity loads the user behind a session user id. No id, or an id
// whose user no longer exists, resolves to an anonymous (nil) identity.
func (a *App) resolveIdentity(ctx context.Context, id int64, ok bool) (*User, error) {
	if !ok {
		return nil, nil
	}
	user, err := a.db.GetUserByID(ctx, id)
	if errors.Is(err, ErrUserNotFound) {
		return nil, nil
	}
	return user, err
}

// register creates a user. The first failing check wins; a duplicate
// username found by the store's unique constraint reports the same message
// as the pre-insert check.
func (a *App) register(ctx context.Context, form credentialsForm) error {
	if err := a.validateForm(form); err != nil {
		return err
	}
	duplicate := validationError(fmt.Sprintf("User %s is already registered.", form.Username))

	taken, err := a.db.UsernameTaken(ctx, form.Username)
	if err != nil {
		return err
	}
	if taken {
		return duplicate
	}

	hash, err := hashPassword(form.Password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return validationError("Password is too long.")
	}
	if err != nil {
		return err
	}
	if _, err := a.db.CreateUser(ctx, form.Username, hash); err != nil {
		if errors.Is(err, ErrDuplicateUsername) {
			return duplicate
		}
		return err
	}
	return nil
}

// authenticate checks a username and password against the credential store.
func (a *App) authenticate(ctx context.Context, form credentialsForm) (*User, error) {
	user, err := a.db.GetUserByUsername(ctx, form.Username)
	if errors.Is(err, ErrUserNotFound) {
		return nil, validationError("Incorrect username.")
	}
	if err != nil {
		return nil, err
	}
	if !checkPassword(user.PwHash, form.Password) {
		return nil, validationError("Incorrect password")
	}
	return user, nil
}
