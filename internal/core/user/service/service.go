package userapp

import (
	"context"
	"errors"
	"strings"
	"time"

	"xpilot/internal/core/apperr"
	userEntity "xpilot/internal/core/user"
	userPort "xpilot/internal/ports/user"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofrs/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenIssuer = "xpilot"
	tokenTTL    = 24 * time.Hour
)

// UserService سرویس مدیریت کاربران
type UserService struct {
	UserRepository userPort.UserRepository
	jwtKey         []byte
	logger         *zap.Logger
}

func NewUserService(repo userPort.UserRepository, jwtKey []byte, logger *zap.Logger) *UserService {
	return &UserService{
		UserRepository: repo,
		jwtKey:         jwtKey,
		logger:         logger,
	}
}

// LoginUser ورود کاربر و صدور توکن JWT
func (s *UserService) LoginUser(ctx context.Context, username, password string) (*userPort.LoginResponse, error) {
	user, err := s.UserRepository.FindByUsername(ctx, username)
	if err != nil {
		s.logger.Info("login failed: unknown user", zap.String("username", username))
		return nil, apperr.New(apperr.KindUnauthenticated, "invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.logger.Info("login failed: bad password", zap.String("username", username))
		return nil, apperr.New(apperr.KindUnauthenticated, "invalid credentials")
	}

	expiresAt := time.Now().Add(tokenTTL)
	token, err := s.generateJWT(user, expiresAt)
	if err != nil {
		s.logger.Error("❌ Error generating JWT", zap.Error(err))
		return nil, apperr.Wrap(apperr.KindInternal, "could not generate token", err)
	}

	return &userPort.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
	}, nil
}

// generateJWT برای تولید توکن JWT
func (s *UserService) generateJWT(user *userEntity.User, expiresAt time.Time) (string, error) {
	claims := &jwt.StandardClaims{
		Subject:   user.ID.String(),
		Issuer:    tokenIssuer,
		IssuedAt:  time.Now().Unix(),
		ExpiresAt: expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtKey)
}

// RegisterUser ثبت‌نام کاربر جدید با پلن رایگان
func (s *UserService) RegisterUser(ctx context.Context, name, username, password string) (*userPort.UserDTO, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(password) < 8 {
		return nil, apperr.New(apperr.KindInvalid, "username is required and password needs at least 8 characters")
	}

	existing, err := s.UserRepository.FindByUsername(ctx, username)
	if err == nil && existing != nil {
		return nil, apperr.New(apperr.KindConflict, "username already taken")
	}
	if err != nil && !errors.Is(err, apperr.NotFound) {
		return nil, apperr.Wrap(apperr.KindPersistence, "look up username", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "hash password", err)
	}

	u, err := s.UserRepository.Create(ctx, &userEntity.User{
		ID:       uuid.Must(uuid.NewV4()),
		Name:     name,
		Username: username,
		Password: string(hashed),
		Plan:     userEntity.PlanFree,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "create user", err)
	}
	return userPort.ToDTO(u), nil
}

// GetUser loads a user by id.
func (s *UserService) GetUser(ctx context.Context, userID string) (*userEntity.User, error) {
	u, err := s.UserRepository.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperr.NotFound) {
			return nil, apperr.New(apperr.KindNotFound, "user not found")
		}
		return nil, apperr.Wrap(apperr.KindPersistence, "load user", err)
	}
	return u, nil
}

// SetPlan switches a user between free and pro.
func (s *UserService) SetPlan(ctx context.Context, username string, plan userEntity.Plan) error {
	if !plan.Valid() {
		return apperr.New(apperr.KindInvalid, "plan must be free or pro")
	}
	u, err := s.UserRepository.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperr.NotFound) {
			return apperr.New(apperr.KindNotFound, "user not found")
		}
		return apperr.Wrap(apperr.KindPersistence, "load user", err)
	}
	if err := s.UserRepository.UpdatePlan(ctx, u.ID.String(), plan); err != nil {
		return apperr.Wrap(apperr.KindPersistence, "update plan", err)
	}
	s.logger.Info("✅ Plan updated", zap.String("username", username), zap.String("plan", string(plan)))
	return nil
}

// ParseToken validates a bearer token and returns the user id it carries.
func ParseToken(tokenString string, key []byte) (string, error) {
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return key, nil
	})
	if err != nil || !token.Valid {
		return "", apperr.New(apperr.KindUnauthenticated, "invalid token")
	}
	if claims.Subject == "" {
		return "", apperr.New(apperr.KindUnauthenticated, "token has no subject")
	}
	return claims.Subject, nil
}
