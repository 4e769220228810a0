package dto

// NotificationFilter narrows the in-app inbox listing.
type NotificationFilter struct {
	UnreadOnly bool
	Type       string
	Page       int
	PageSize   int
}

// UnreadCountResponse reports how many notifications await the manager.
type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}
