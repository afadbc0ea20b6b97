package repository

import (
	"fmt"

	"github.com/iliyamo/mock-booking-api/internal/model"
)

// FindUserByCredentials scans users for an exact username and password match.
func FindUserByCredentials(ds *model.Dataset, username, password string) (model.User, error) {
	for _, u := range ds.Users {
		if u.Username == username && u.Password == password {
			return u, nil
		}
	}
	return model.User{}, fmt.Errorf("user %q: %w", username, ErrInvalidCredentials)
}

// FindUser fetches a user by id.
func FindUser(ds *model.Dataset, id int) (model.User, error) {
	i := userIndex(ds, id)
	if i < 0 {
		return model.User{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return ds.Users[i], nil
}

// UpdateUserProfile sets the email and photo reference of a user.
func UpdateUserProfile(ds *model.Dataset, id int, email, photo string) (model.User, error) {
	i := userIndex(ds, id)
	if i < 0 {
		return model.User{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	ds.Users[i].Email = email
	ds.Users[i].ProfilePhoto = photo
	return ds.Users[i], nil
}

func userIndex(ds *model.Dataset, id int) int {
	for i := range ds.Users {
		if ds.Users[i].ID == id {
			return i
		}
	}
	return -1
}
