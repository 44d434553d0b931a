package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/blogd/blogd/internal/database"
	"github.com/blogd/blogd/internal/models"
	sessionpkg "github.com/blogd/blogd/internal/pkg/session"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	passwordCost = 10
	failureDelay = time.Second
)

type Service struct {
	db           *gorm.DB
	ttl          time.Duration
	failureDelay time.Duration
}

func NewService(db *gorm.DB, ttl time.Duration) *Service {
	return &Service{db: db, ttl: ttl, failureDelay: failureDelay}
}

// Register creates a WRITER account. It does not sign the user in.
func (s *Service) Register(ctx context.Context, dto *RegisterDTO) (*models.User, error) {
	email := normalizeEmail(dto.Email)
	if email == "" || dto.Password == "" {
		return nil, errMissingCredentials
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), passwordCost)
	if err != nil {
		return nil, err
	}

	u := models.User{
		Email:    email,
		Password: string(hash),
		Name:     strings.TrimSpace(dto.Name),
		Role:     models.RoleWriter,
	}
	if err := db.Create(&u).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return nil, errUserExists
		}
		return nil, err
	}
	return &u, nil
}

// Authenticate checks email and password. Every failure looks the same to
// the caller and costs failureDelay.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, errMissingCredentials
	}

	var u models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.slowDown(ctx)
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		s.slowDown(ctx)
		return nil, errInvalidCredentials
	}
	return &u, nil
}

// Login authenticates and issues a session token.
func (s *Service) Login(ctx context.Context, dto *LoginDTO, ip, ua string) (*sessionpkg.Issued, *models.User, error) {
	u, err := s.Authenticate(ctx, dto.Email, dto.Password)
	if err != nil {
		return nil, nil, err
	}
	if u.Blocked {
		return nil, nil, errUserBlocked
	}

	issued, err := sessionpkg.Issue(s.db.WithContext(ctx), u, ip, ua, s.ttl)
	if err != nil {
		return nil, nil, err
	}
	return issued, u, nil
}

func (s *Service) Logout(ctx context.Context, userID, sessionID string) error {
	err := sessionpkg.Revoke(s.db.WithContext(ctx), userID, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

func (s *Service) Sessions(ctx context.Context, userID string) ([]models.Session, error) {
	return sessionpkg.ListActive(s.db.WithContext(ctx), userID)
}

func (s *Service) slowDown(ctx context.Context) {
	if s.failureDelay <= 0 {
		return
	}
	t := time.NewTimer(s.failureDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
