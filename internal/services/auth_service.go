package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/anonto42/effisocial/backend/internal/models"
	"github.com/anonto42/effisocial/backend/internal/repositories"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID    uint
	Admin bool
}

// IDTokenVerifier verifies Firebase ID tokens. *auth.Client satisfies it.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type AuthService struct {
	users    repositories.UserRepository
	secret   []byte
	ttl      time.Duration
	firebase IDTokenVerifier
}

// NewAuthService creates the service. verifier may be nil, which disables
// Firebase login.
func NewAuthService(users repositories.UserRepository, secret string, ttl time.Duration, verifier IDTokenVerifier) *AuthService {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &AuthService{
		users:    users,
		secret:   []byte(secret),
		ttl:      ttl,
		firebase: verifier,
	}
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, Conflict("email already registered")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if _, err := s.users.GetUserByUsername(ctx, req.Username); err == nil {
		return nil, Conflict("username already taken")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("lookup username: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username: req.Username,
		Email:    email,
		Password: string(hashed),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, Conflict("username or email already registered")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	user.Friends = []uint{}
	user.Groups = []uint{}

	return s.respond(user)
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user.Password == "" {
		return nil, Unauthorized("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, Unauthorized("invalid email or password")
	}
	if err := s.users.LoadRelations(ctx, user); err != nil {
		return nil, fmt.Errorf("load relations: %w", err)
	}
	return s.respond(user)
}

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// FirebaseLogin exchanges a verified Firebase ID token for a local token.
// Users are matched by Firebase uid, then by email, and created otherwise.
func (s *AuthService) FirebaseLogin(ctx context.Context, idToken string) (*models.AuthResponse, error) {
	if s.firebase == nil {
		return nil, Validation("firebase login is not configured")
	}
	token, err := s.firebase.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, Unauthorized("invalid firebase ID token")
	}
	email, _ := token.Claims["email"].(string)
	if email == "" {
		return nil, Validation("firebase account has no email")
	}
	uid := token.UID

	user, err := s.users.GetUserByFirebaseUID(ctx, uid)
	switch {
	case err == nil:
	case errors.Is(err, repositories.ErrNotFound):
		user, err = s.users.GetUserByEmail(ctx, email)
		switch {
		case err == nil:
			user.FirebaseUID = &uid
			if err := s.users.UpdateUser(ctx, user); err != nil {
				return nil, fmt.Errorf("link firebase uid: %w", err)
			}
		case errors.Is(err, repositories.ErrNotFound):
			name, _ := token.Claims["name"].(string)
			user, err = s.createFirebaseUser(ctx, uid, email, name)
			if err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("lookup user: %w", err)
		}
	default:
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := s.users.LoadRelations(ctx, user); err != nil {
		return nil, fmt.Errorf("load relations: %w", err)
	}
	return s.respond(user)
}

func (s *AuthService) createFirebaseUser(ctx context.Context, uid, email, name string) (*models.User, error) {
	base := nonAlnum.ReplaceAllString(name, "")
	if len(base) < 3 {
		base = nonAlnum.ReplaceAllString(strings.SplitN(email, "@", 2)[0], "")
	}
	if len(base) < 3 {
		base = "user" + base
	}
	if len(base) > 40 {
		base = base[:40]
	}

	username := base
	for i := 1; ; i++ {
		_, err := s.users.GetUserByUsername(ctx, username)
		if errors.Is(err, repositories.ErrNotFound) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("lookup username: %w", err)
		}
		username = fmt.Sprintf("%s%d", base, i)
	}

	user := &models.User{
		Username:    username,
		Email:       strings.ToLower(email),
		FirebaseUID: &uid,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Me returns the caller with friend and group ids.
func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user not found", "get user")
	}
	if err := s.users.LoadRelations(ctx, user); err != nil {
		return nil, fmt.Errorf("load relations: %w", err)
	}
	return user, nil
}

func (s *AuthService) respond(user *models.User) (*models.AuthResponse, error) {
	token, err := s.IssueToken(user)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}

// IssueToken signs an HS256 token carrying the user id, role and email.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &models.JwtCustomClaims{
		UserID: user.ID,
		Role:   user.Role,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
