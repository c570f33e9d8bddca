// Copyright (c) 2026 RuneBingo. All rights reserved.

/*
Package catalog exposes the OSRS item catalog and uploaded media that bingo
tiles reference.

Items are reference data imported out of band; a disabled item stays readable
but can no longer be attached to new tiles.
*/
package catalog

import "time"

// Item is one Old School RuneScape item.
type Item struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Examine   string    `json:"examine,omitempty"`
	IconURL   string    `json:"icon_url,omitempty"`
	Members   bool      `json:"members"`
	Enabled   bool      `json:"enabled"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Media is an uploaded image owned by the entity that references it.
type Media struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	UploadedBy  *string   `json:"uploaded_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Filter holds parameters for searching items.
type Filter struct {
	Query       string
	EnabledOnly bool
}
