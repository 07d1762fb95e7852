package models

import "time"

// StatusCheck is a health-ping record clients create to verify the service
// and its store are reachable end to end.
type StatusCheck struct {
	ID         string    `json:"id" bson:"id"`
	ClientName string    `json:"client_name" bson:"client_name"`
	Timestamp  time.Time `json:"timestamp" bson:"-"`
}
