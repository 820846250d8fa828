package dto

import "reelshare/domain/model"

type AuthResponse struct {
	Token string              `json:"token"`
	User  model.AccountPublic `json:"user"`
}
