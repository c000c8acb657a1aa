package dto

type NotificationResponse struct {
	ID          string  `json:"id"`
	UserID      *string `json:"userId"`
	Type        string  `json:"type"`
	Message     string  `json:"message"`
	ReferenceID *string `json:"referenceId"`
	IsRead      bool    `json:"isRead"`
	CreatedAt   string  `json:"createdAt"`
}

type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}
