package dto

// CreateNotificationRequest sends a notification to one user.
type CreateNotificationRequest struct {
	UserID  string `json:"userId" validate:"required,uuid"`
	Title   string `json:"title" validate:"required,max=200"`
	Message string `json:"message" validate:"required"`
}

// NotificationEvent is the payload published for every stored notification.
type NotificationEvent struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
}
