package dto

type AuditFilter struct {
	EntityType string `form:"entityType" validate:"omitempty,max=40"`
	EntityID   string `form:"entityId"   validate:"omitempty,uuid"`
}

type AuditLogResponse struct {
	ID         string  `json:"id"`
	UserID     *string `json:"userId"`
	ActionType string  `json:"actionType"`
	EntityType string  `json:"entityType"`
	EntityID   *string `json:"entityId"`
	Details    string  `json:"details"`
	IPAddress  string  `json:"ipAddress"`
	CreatedAt  string  `json:"createdAt"`
}
