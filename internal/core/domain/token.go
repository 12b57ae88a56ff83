package domain

import "time"

// TokenClaims is the verified payload of a bearer token.
type TokenClaims struct {
	ID        string
	Subject   string
	UserUUID  string // the identity the token was issued to; usernames may be reused
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// RevokedToken marks a token as unusable. Tokens are stored by digest;
// ExpiresAt is zero when the token's own expiry was unknown at revocation.
type RevokedToken struct {
	Digest    string
	RevokedAt time.Time
	ExpiresAt time.Time
}
