package handler

import "slices"

// Admins is the static allow-list of users permitted to run /refresh.
type Admins []int64

func (a Admins) IsAuthorized(userID int64) bool {
	return userID != 0 && slices.Contains(a, userID)
}
