package service

import (
	"context"
	"crypto/subtle"
	"time"

	"leadcapture_backend/internal/auth/token"
	"leadcapture_backend/internal/auth/transport"
	"leadcapture_backend/platform/apperr"
	"leadcapture_backend/platform/config"
	"leadcapture_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenType = "access"
	RoleStaff       = "staff"
	msgBadLogin     = "invalid username or password"
)

type Service struct {
	cfg config.AuthServiceConfig
	log *logger.Logger
	now func() time.Time
}

func New(cfg config.AuthServiceConfig, log *logger.Logger) *Service {
	return &Service{cfg: cfg, log: log, now: time.Now}
}

// SignIn checks the staff credentials and issues a short-lived access token.
// Sign-in is closed when no password hash is configured.
func (s *Service) SignIn(ctx context.Context, req transport.SignInRequest) (transport.AuthResponse, error) {
	hash := s.cfg.GetStaffPasswordHash()
	if hash == "" {
		s.log.WarnContext(ctx, "staff sign-in attempted without a configured password hash")
		return transport.AuthResponse{}, apperr.Unauthorized(msgBadLogin)
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.cfg.GetStaffUsername())) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password))
	if !userOK || passErr != nil {
		s.log.InfoContext(ctx, "staff sign-in rejected", "username", req.Username)
		return transport.AuthResponse{}, apperr.Unauthorized(msgBadLogin)
	}

	ttl := s.cfg.GetAccessTokenTTL()
	signed, err := s.signJWT(req.Username, []string{RoleStaff}, ttl)
	if err != nil {
		return transport.AuthResponse{}, apperr.Wrap(apperr.KindInternal, "failed to issue token", err).WithOp("auth.SignIn")
	}

	return transport.AuthResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(ttl.Seconds()),
	}, nil
}

func (s *Service) signJWT(subject string, roles []string, ttl time.Duration) (string, error) {
	jti, err := token.GenerateRandomToken(16)
	if err != nil {
		return "", err
	}

	now := s.now()
	claims := jwt.MapClaims{
		"sub":   subject,
		"type":  accessTokenType,
		"roles": roles,
		"jti":   jti,
		"exp":   now.Add(ttl).Unix(),
		"iat":   now.Unix(),
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenObj.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}
