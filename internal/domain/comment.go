package domain

import "time"

// Comment — комментарий из таймлайна заказа в админке Shopify.
type Comment struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
