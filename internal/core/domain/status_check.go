package domain

import "time"

// StatusCheck is an append-only heartbeat entry.
type StatusCheck struct {
	ID         string    `json:"id" bson:"id"`
	ClientName string    `json:"client_name" bson:"client_name"`
	Timestamp  time.Time `json:"timestamp" bson:"timestamp"`
}

const StatusCheckFieldID = "id"

const StatusChecksCollection = "status_checks"
