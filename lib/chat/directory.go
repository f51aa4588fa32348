// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"cmp"
	"slices"
)

// UnknownUserName is shown for conversations missing from the
// directory.
const UnknownUserName = "Unknown User"

// User is one directory entry. The directory is owned by the server;
// linedesk only reads it.
type User struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PictureURL string `json:"picture,omitempty"`
}

// Directory maps user ids to profiles. The zero value is an empty
// directory ready to use. A Directory is not safe for concurrent
// mutation; the engine owns the live copy and hands out clones.
type Directory struct {
	users map[string]User
}

// NewDirectory builds a directory from a list of users. Later entries
// with the same id replace earlier ones.
func NewDirectory(users []User) Directory {
	directory := Directory{users: make(map[string]User, len(users))}
	for _, user := range users {
		directory.users[user.ID] = user
	}
	return directory
}

// Put adds or replaces a user. It reports whether the entry changed.
func (directory *Directory) Put(user User) bool {
	if directory.users == nil {
		directory.users = make(map[string]User)
	}
	if existing, ok := directory.users[user.ID]; ok && existing == user {
		return false
	}
	directory.users[user.ID] = user
	return true
}

// Lookup returns the user with the given id.
func (directory Directory) Lookup(id string) (User, bool) {
	user, ok := directory.users[id]
	return user, ok
}

// Has reports whether id is a known user.
func (directory Directory) Has(id string) bool {
	_, ok := directory.users[id]
	return ok
}

// Resolve returns the display name for id, or UnknownUserName.
func (directory Directory) Resolve(id string) string {
	if user, ok := directory.users[id]; ok && user.Name != "" {
		return user.Name
	}
	return UnknownUserName
}

// Avatar returns the picture URL for id, or "" when unknown.
func (directory Directory) Avatar(id string) string {
	return directory.users[id].PictureURL
}

// Len returns the number of users.
func (directory Directory) Len() int { return len(directory.users) }

// Users returns every user sorted by name, then id.
func (directory Directory) Users() []User {
	users := make([]User, 0, len(directory.users))
	for _, user := range directory.users {
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b User) int {
		if order := cmp.Compare(a.Name, b.Name); order != 0 {
			return order
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return users
}

// Clone returns an independent copy.
func (directory Directory) Clone() Directory {
	clone := Directory{users: make(map[string]User, len(directory.users))}
	for id, user := range directory.users {
		clone.users[id] = user
	}
	return clone
}
