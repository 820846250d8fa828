package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type PushKeys struct {
	P256dh string `json:"p256dh" bson:"p256dh" binding:"required"`
	Auth   string `json:"auth"   bson:"auth"   binding:"required"`
}

// PushSubscription ties a browser push endpoint to an account. Endpoint is unique.
type PushSubscription struct {
	ID        bson.ObjectID `json:"id"        bson:"_id,omitempty"`
	Account   bson.ObjectID `json:"account"   bson:"account"`
	Endpoint  string        `json:"endpoint"  bson:"endpoint"`
	Keys      PushKeys      `json:"keys"      bson:"keys"`
	UserAgent string        `json:"userAgent" bson:"userAgent,omitempty"`
	CreatedAt time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// PushMessage is the JSON body delivered to the service worker.
type PushMessage struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	Icon      string `json:"icon"`
	Badge     string `json:"badge,omitempty"`
	URL       string `json:"url"`
	Timestamp int64  `json:"timestamp"`
}
