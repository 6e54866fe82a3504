package auth

import "github.com/golang-jwt/jwt/v5"

// Role distinguishes shoppers from admin panel users.
type Role string

const (
	RoleShopper Role = "shopper"
	RoleAdmin   Role = "admin"
)

func (r Role) IsValid() bool {
	return r == RoleShopper || r == RoleAdmin
}

// AccessTokenPayload holds the values minted into an access token.
type AccessTokenPayload struct {
	Username string
	Role     Role
	JTI      string
}

// AccessTokenClaims is the JWT claim set carried by storefront tokens.
type AccessTokenClaims struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}
