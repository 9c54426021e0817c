package notify

import "errors"

var (
	ErrNoNotifications = errors.New("no notifications")
)
