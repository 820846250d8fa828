package model

import (
	"time"

	"github.com/golang-jwt/jwt"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type Role string

const (
	RoleSender Role = "sender"
	RoleViewer Role = "viewer"
)

func (r Role) Valid() bool {
	return r == RoleSender || r == RoleViewer
}

type Account struct {
	ID           bson.ObjectID `json:"id"        bson:"_id,omitempty"`
	Username     string        `json:"username"  bson:"username"`
	PasswordHash string        `json:"-"         bson:"passwordHash"`
	Role         Role          `json:"role"      bson:"role"`
	CreatedAt    time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// AccountPublic is the subset of an account that is safe to embed in responses.
type AccountPublic struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

func (a Account) Public() AccountPublic {
	return AccountPublic{ID: a.ID.Hex(), Username: a.Username, Role: a.Role, CreatedAt: a.CreatedAt}
}

type ReqRegister struct {
	Username string `json:"username" binding:"required,min=3,max=30"`
	Password string `json:"password" binding:"required,min=6"`
	Role     Role   `json:"role"     binding:"required"`
}

type ReqLogin struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AccountClaims is carried in the bearer token; Subject holds the account id.
type AccountClaims struct {
	jwt.StandardClaims
	Username string `json:"username"`
	Role     Role   `json:"role"`
}
