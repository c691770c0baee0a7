package models

import "time"

type Stadium struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	Capacity  *int      `json:"capacity,omitempty"`
	PhotoKey  *string   `json:"-"`
	PhotoURL  *string   `json:"photo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
