package dto

import "reelshare/domain/model"

type PushSubscriptionBody struct {
	Endpoint string         `json:"endpoint" binding:"required"`
	Keys     model.PushKeys `json:"keys"     binding:"required"`
}

type SubscribeRequest struct {
	Subscription PushSubscriptionBody `json:"subscription" binding:"required"`
	UserAgent    string               `json:"userAgent"`
}

type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// SendPushRequest targets one account when AccountID is set, otherwise all viewers.
type SendPushRequest struct {
	AccountID string `json:"accountId"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Icon      string `json:"icon"`
	URL       string `json:"url"`
}

type SendPushResult struct {
	Sent    int `json:"sent"`
	Total   int `json:"total"`
	Removed int `json:"removed"`
}
