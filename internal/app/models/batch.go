package models

import "time"

type MetadataVersion struct {
	Version      string    `json:"version"`
	LastModified time.Time `json:"lastModified"`
}

type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

type BatchEvent struct {
	Event      string    `json:"event"`
	BatchID    string    `json:"batchId"`
	Schema     string    `json:"schema"`
	Analyses   int       `json:"analysesCount"`
	OccurredAt time.Time `json:"occurredAt"`
}

type AuthToken struct {
	AccessToken string `json:"accessToken"`
	ExpiresAt   int64  `json:"expiresAt"`
	Duration    int64  `json:"duration"`
}

// AuthClaims is the verified identity attached to a request.
type AuthClaims struct {
	Subject string
	Roles   []string
}
