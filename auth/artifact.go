package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	apperrors "github.com/fantasytools/fpl-agent/internal/errors"
)

// parseArtifact validates the shape of a credential artifact delivered
// by the out-of-band channel and converts it into a token. The artifact
// is the upstream's access token, optionally carrying a "Bearer "
// prefix. Only the shape is checked here; verifying the signature is
// the upstream's job, the core just refuses obvious garbage.
func parseArtifact(artifact string) (*oauth2.Token, error) {
	raw := strings.TrimSpace(artifact)
	raw = strings.TrimPrefix(raw, "Bearer ")
	if raw == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidArtifact, "auth: empty artifact")
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidArtifact, "auth: artifact is not a well-formed token (%v)", err)
	}

	tok := &oauth2.Token{
		AccessToken: raw,
		TokenType:   "Bearer",
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		if time.Now().After(exp.Time) {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidArtifact, "auth: artifact already expired at %s", exp.Time)
		}
		tok.Expiry = exp.Time
	}
	return tok, nil
}
