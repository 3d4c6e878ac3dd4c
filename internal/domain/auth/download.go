package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// DownloadClaims authorizes fetching exactly one payslip PDF. Links shared
// over WhatsApp expire on the same TTL as PIN tokens.
type DownloadClaims struct {
	TenantID  string `json:"tid"`
	PayslipID string `json:"pid"`
	jwt.RegisteredClaims
}

func (g *Gate) IssueDownloadToken(tenantID, payslipID string) (string, error) {
	issued := g.now()
	claims := DownloadClaims{
		TenantID:  tenantID,
		PayslipID: payslipID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(g.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(g.secret)
}

func (g *Gate) VerifyDownloadToken(tokenString string) (DownloadClaims, error) {
	if tokenString == "" {
		return DownloadClaims{}, ErrNoToken
	}
	token, err := jwt.ParseWithClaims(tokenString, &DownloadClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return g.secret, nil
	}, jwt.WithTimeFunc(g.now))
	if err != nil {
		return DownloadClaims{}, ErrBadToken
	}
	claims, ok := token.Claims.(*DownloadClaims)
	if !ok || !token.Valid {
		return DownloadClaims{}, ErrBadToken
	}
	return *claims, nil
}
