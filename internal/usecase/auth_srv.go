package usecase

import (
	"context"
	"crypto/subtle"

	"chauffeur-booking/internal/dto/request"
	"chauffeur-booking/internal/dto/response"
	"chauffeur-booking/pkg/apperr"
	"chauffeur-booking/pkg/utils"

	"go.uber.org/zap"
)

type AuthService interface {
	Login(ctx context.Context, req *request.LoginRequest) (*response.LoginResponse, error)
}

type authService struct {
	admin  utils.AdminConfig
	tokens *utils.TokenManager
	now    Clock
	log    *zap.Logger
}

func NewAuthService(admin utils.AdminConfig, tokens *utils.TokenManager, now Clock, log *zap.Logger) AuthService {
	return &authService{
		admin:  admin,
		tokens: tokens,
		now:    now,
		log:    log.With(zap.String("service", "auth")),
	}
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.LoginResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	invalid := apperr.UnauthorizedError{Msg: "invalid username or password"}

	if s.admin.PasswordHash == "" {
		s.log.Error("Admin login attempted but ADMIN_PASSWORD_HASH is not set")
		return nil, invalid
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.admin.Username)) == 1
	passOK := utils.CheckPassword(s.admin.PasswordHash, req.Password)
	if !userOK || !passOK {
		s.log.Warn("Failed admin login", zap.String("username", req.Username))
		return nil, invalid
	}

	token, expiresAt, err := s.tokens.Generate(req.Username, s.now())
	if err != nil {
		s.log.Error("Failed to issue admin token", zap.Error(err))
		return nil, err
	}

	s.log.Info("Admin logged in", zap.String("username", req.Username))
	return &response.LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
		Username:  req.Username,
	}, nil
}
