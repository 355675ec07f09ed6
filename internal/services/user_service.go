package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"brewshop/internal/auth"
	"brewshop/internal/models"
	"brewshop/internal/notify"
	"brewshop/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 8

type RegisterInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
}

type ProfileInput struct {
	FirstName     *string
	LastName      *string
	BusinessName  *string
	BusinessType  *string
	LicenseNumber *string
	Phone         *string
	Address       *string
}

type LoginResult struct {
	User    *models.User
	Token   string
	Expires time.Time
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User, password string) error
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	ObtainTokenPair(ctx context.Context, email, password string) (*TokenPair, error)
	RefreshAccess(ctx context.Context, refreshToken string) (string, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uint, input ProfileInput) (*models.User, error)
	ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error
	RequestRecovery(ctx context.Context, email string) error
	RecoverPassword(ctx context.Context, email, token, newPassword string) error
	SetVerified(ctx context.Context, userID uint, verified bool) (*models.User, error)
}

type userService struct {
	db          *gorm.DB
	userRepo    repository.UserRepository
	tokens      *auth.Manager
	queue       notify.Queue
	recoveryTTL time.Duration
	now         func() time.Time
}

func NewUserService(db *gorm.DB, userRepo repository.UserRepository, tokens *auth.Manager, queue notify.Queue, recoveryTTL time.Duration) UserService {
	return &userService{
		db:          db,
		userRepo:    userRepo,
		tokens:      tokens,
		queue:       queue,
		recoveryTTL: recoveryTTL,
		now:         time.Now,
	}
}

// ValidatePassword applies the password policy.
func ValidatePassword(password string) error {
	if validate.Var(password, fmt.Sprintf("min=%d", minPasswordLength)) != nil {
		return &ValidationError{Fields: map[string]string{
			"password": fmt.Sprintf("This password is too short. It must contain at least %d characters.", minPasswordLength),
		}}
	}
	allDigits := true
	for _, r := range password {
		if !unicode.IsDigit(r) {
			allDigits = false
			break
		}
	}
	if allDigits {
		return &ValidationError{Fields: map[string]string{"password": "This password is entirely numeric."}}
	}
	return nil
}

func fullName(first, last, email string) string {
	name := strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
	if name == "" {
		return email
	}
	return name
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (s *userService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	verr := &ValidationError{}
	email := repository.NormalizeEmail(input.Email)
	verr.Email("email", email)
	verr.Max("email", email, 255)
	verr.Required("first_name", input.FirstName)
	verr.Required("last_name", input.LastName)
	verr.Max("first_name", input.FirstName, 150)
	verr.Max("last_name", input.LastName, 150)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	if err := ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	user := &models.User{
		Email:     email,
		Username:  email,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
	}
	if err := s.CreateUser(ctx, user, input.Password); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUser stores a user with a hashed password. Creating a user that is
// already verified sends no notification.
func (s *userService) CreateUser(ctx context.Context, user *models.User, password string) error {
	hashed, err := hashPassword(password)
	if err != nil {
		return err
	}
	user.Password = hashed
	user.Email = repository.NormalizeEmail(user.Email)
	if user.Username == "" {
		user.Username = user.Email
	}
	user.FullName = fullName(user.FirstName, user.LastName, user.Email)

	if _, err := s.userRepo.GetByEmail(ctx, user.Email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Authenticate checks credentials and the verification gate.
func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsVerified {
		return nil, ErrAccountNotVerified
	}

	now := s.now()
	if err := s.userRepo.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now
	return user, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	token, expires, err := s.tokens.IssueLogin(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Token: token, Expires: expires}, nil
}

func (s *userService) ObtainTokenPair(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	access, _, err := s.tokens.IssueAccess(user)
	if err != nil {
		return nil, err
	}
	refresh, _, err := s.tokens.IssueRefresh(user)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *userService) RefreshAccess(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.Parse(refreshToken, auth.RefreshToken)
	if err != nil {
		return "", ErrInvalidToken
	}
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidToken
		}
		return "", err
	}
	if !user.IsVerified {
		return "", ErrAccountNotVerified
	}
	access, _, err := s.tokens.IssueAccess(user)
	return access, err
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, ErrUserNotFound)
	}
	return user, nil
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, translate(err, ErrUserNotFound)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint, input ProfileInput) (*models.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	assign := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	assign(&user.FirstName, input.FirstName)
	assign(&user.LastName, input.LastName)
	assign(&user.BusinessName, input.BusinessName)
	assign(&user.BusinessType, input.BusinessType)
	assign(&user.LicenseNumber, input.LicenseNumber)
	assign(&user.Phone, input.Phone)
	assign(&user.Address, input.Address)
	user.FullName = fullName(user.FirstName, user.LastName, user.Email)

	verr := &ValidationError{}
	verr.Max("phone", user.Phone, 20)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return ErrInvalidOldPassword
	}
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	hashed, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(ctx, user.ID, hashed)
}

// RequestRecovery mails a recovery code. Unknown addresses are ignored so the
// endpoint does not reveal which e-mails have accounts.
func (s *userService) RequestRecovery(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	recovery := &models.Recovery{
		UserID: user.ID,
		Token:  strings.ReplaceAll(uuid.NewString(), "-", ""),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.userRepo.WithTx(tx)
		if err := repo.DeleteRecoveries(ctx, user.ID); err != nil {
			return err
		}
		return repo.CreateRecovery(ctx, recovery)
	})
	if err != nil {
		return fmt.Errorf("failed to store recovery token: %w", err)
	}

	publish(ctx, s.queue, notify.PasswordRecovery(user, recovery.Token))
	return nil
}

// RecoverPassword consumes a recovery token and sets a new password.
func (s *userService) RecoverPassword(ctx context.Context, email, token, newPassword string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecoveryFailed
		}
		return err
	}
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	hashed, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	// an expired token is purged, so that transaction commits and the
	// failure is reported afterwards
	expired := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.userRepo.WithTx(tx)
		recovery, err := repo.FindRecovery(ctx, user.ID, token)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecoveryFailed
			}
			return err
		}
		if s.recoveryTTL > 0 && s.now().After(recovery.CreatedAt.Add(s.recoveryTTL)) {
			expired = true
			return repo.DeleteRecoveries(ctx, user.ID)
		}
		if err := repo.UpdatePassword(ctx, user.ID, hashed); err != nil {
			return err
		}
		return repo.DeleteRecoveries(ctx, user.ID)
	})
	if err != nil {
		return err
	}
	if expired {
		return ErrRecoveryFailed
	}
	return nil
}

// SetVerified changes the verification flag. Only a false to true change on
// an existing account queues the "verified" notification.
func (s *userService) SetVerified(ctx context.Context, userID uint, verified bool) (*models.User, error) {
	var (
		user    *models.User
		flipped bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.userRepo.WithTx(tx)
		var err error
		user, err = repo.LockByID(ctx, userID)
		if err != nil {
			return translate(err, ErrUserNotFound)
		}
		if user.IsVerified == verified {
			return nil
		}
		if err := repo.SetVerified(ctx, userID, verified); err != nil {
			return err
		}
		flipped = verified
		user.IsVerified = verified
		return nil
	})
	if err != nil {
		return nil, err
	}

	if flipped {
		publish(ctx, s.queue, notify.AccountVerified(user))
	}
	return user, nil
}
