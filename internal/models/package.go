package models

import "time"

// EventPackage is a purchasable event tier. Price doubles as the selection key.
type EventPackage struct {
	ID             string    `json:"id" yaml:"id" toml:"id"`
	Name           string    `json:"name" yaml:"name" toml:"name"`
	Price          string    `json:"price" yaml:"price" toml:"price"`
	Duration       string    `json:"duration" yaml:"duration" toml:"duration"`
	OnlineSessions int       `json:"onlineSessions" yaml:"online_sessions" toml:"online_sessions"`
	LiveSessions   int       `json:"liveSessions" yaml:"live_sessions" toml:"live_sessions"`
	WhatsappLink   string    `json:"whatsappLink" yaml:"whatsapp_link" toml:"whatsapp_link"`
	SortOrder      int64     `json:"sortOrder" yaml:"sort_order" toml:"sort_order"`
	CreatedAt      time.Time `json:"createdAt" yaml:"-" toml:"-"`
	UpdatedAt      time.Time `json:"updatedAt" yaml:"-" toml:"-"`
}
