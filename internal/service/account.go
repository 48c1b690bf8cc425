package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/emmanuelnwankwo/api-template/internal/auth"
	"github.com/emmanuelnwankwo/api-template/internal/domain"
	"github.com/emmanuelnwankwo/api-template/internal/event"
	"github.com/emmanuelnwankwo/api-template/internal/mailer"
	"github.com/emmanuelnwankwo/api-template/internal/repository"
	apperrors "github.com/emmanuelnwankwo/api-template/pkg/errors"
)

// AccountService implements the business logic for account and auth operations.
type AccountService struct {
	users    repository.UserRepository
	tokens   *auth.TokenService
	mailer   mailer.Mailer
	producer event.Publisher
	baseURL  string
	logger   *slog.Logger
}

// NewAccountService creates a new account service. baseURL is the public base
// URL used when building verification and reset links.
func NewAccountService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	m mailer.Mailer,
	producer event.Publisher,
	baseURL string,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		users:    users,
		tokens:   tokens,
		mailer:   m,
		producer: producer,
		baseURL:  baseURL,
		logger:   logger,
	}
}

// --- Input/Output types ---

// RegisterInput holds the parameters for registering a new account.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Gender    string
}

// RegisterResult is the outcome of a successful registration. EmailSent is
// advisory: a failed verification mail does not fail the registration.
type RegisterResult struct {
	User      *domain.User
	Token     string
	EmailSent bool
}

// LoginInput holds the parameters for logging in.
type LoginInput struct {
	Email    string
	Password string
}

// UpdateProfileInput holds the parameters for a partial profile update. Nil
// fields are left unchanged.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Gender    *string
	Password  *string
}

// --- Auth Operations ---

// Register creates a new account, issues a session token, and attempts to
// deliver the verification email.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.AlreadyExists(fmt.Sprintf("User with email: %s already exists", input.Email))
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("check existing email: %w", err)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: hash,
		Gender:       input.Gender,
		IsVerified:   false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The store's unique constraint backstops the duplicate check above under
	// concurrent registration.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.IssueSession(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	// Delivery failure does not fail registration; the caller gets an
	// advisory flag instead.
	emailSent := true
	verificationLink := s.baseURL + "/api/auth/verify?token=" + token
	if err := s.mailer.Send(ctx, mailer.Message{
		To:         user.Email,
		TemplateID: mailer.TemplateVerification,
		Name:       user.FirstName,
		Link:       verificationLink,
	}); err != nil {
		emailSent = false
		s.logger.ErrorContext(ctx, "failed to send verification email",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
		slog.Bool("email_sent", emailSent),
	)

	return &RegisterResult{User: user, Token: token, EmailSent: emailSent}, nil
}

// VerifyEmail marks the account identified by the token as verified. The
// transition is one-way: a second verification leaves isVerified true.
func (s *AccountService) VerifyEmail(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, apperrors.InvalidToken("Invalid token, verification unsuccessful", 400)
	}

	user, err := s.users.GetByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.InvalidInput("No user found to verify")
		}
		return nil, fmt.Errorf("get user to verify: %w", err)
	}

	if !user.IsVerified {
		user.IsVerified = true
		if err := s.users.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("mark user verified: %w", err)
		}

		if err := s.producer.PublishUserVerified(ctx, user); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish user.verified event",
				slog.String("user_id", user.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "email verified",
		slog.String("user_id", user.ID),
	)

	return user, nil
}

// Login authenticates an account with email and password and issues a fresh
// session token.
func (s *AccountService) Login(ctx context.Context, input LoginInput) (*domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, "", apperrors.Unauthorized("User does not exists")
		}
		return nil, "", fmt.Errorf("get user by email: %w", err)
	}

	if !auth.CheckPassword(input.Password, user.PasswordHash) {
		return nil, "", apperrors.Unauthorized("Password is not correct, try again")
	}

	token, err := s.tokens.IssueSession(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("issue session token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, token, nil
}

// RequestPasswordReset issues a reset token and mails the reset link. Unlike
// registration, delivery must succeed here: the link is the whole point of
// the operation.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("User account does not exist")
		}
		return fmt.Errorf("get user by email: %w", err)
	}

	token, err := s.tokens.IssueReset(user.ID, user.Email)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}

	resetLink := s.baseURL + "/api/auth/reset-password?token=" + token
	if err := s.mailer.Send(ctx, mailer.Message{
		To:         user.Email,
		TemplateID: mailer.TemplatePasswordReset,
		Name:       user.FirstName,
		Link:       resetLink,
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to send password reset email",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return apperrors.DeliveryFailed("Unable to send password reset link, try again later")
	}

	s.logger.InfoContext(ctx, "password reset link sent",
		slog.String("user_id", user.ID),
	)

	return nil
}

// ConfirmPasswordResetLink verifies a reset token and returns the instruction
// for completing the reset. No state changes; the final reset call is a
// separate operation keyed by email.
func (s *AccountService) ConfirmPasswordResetLink(ctx context.Context, token string) (string, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return "", apperrors.InvalidToken("Verification unsuccessful, Invalid Token", 500)
	}

	url := s.baseURL + "/api/auth/password/reset/" + claims.Email
	instruction := fmt.Sprintf("Goto %s using POST Method with body 'password': 'newpassword' and 'confirmPassword': 'newpassword'", url)

	return instruction, nil
}

// ResetPassword replaces the password for the account with the given email.
func (s *AccountService) ResetPassword(ctx context.Context, email, newPassword string) error {
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}

	rows, err := s.users.UpdatePasswordByEmail(ctx, email, hash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("User account does not exist")
	}

	if err := s.producer.PublishUserPasswordReset(ctx, email); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.password_reset event",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "password reset completed",
		slog.String("email", email),
	)

	return nil
}

// --- Profile Operations ---

// GetProfile retrieves an account by its ID.
func (s *AccountService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("User does not exists")
		}
		return nil, fmt.Errorf("get user profile: %w", err)
	}
	return user, nil
}

// UpdateProfile applies a partial update to an account's profile fields.
func (s *AccountService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("User does not exists")
		}
		return nil, fmt.Errorf("get user for update: %w", err)
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Gender != nil {
		user.Gender = *input.Gender
	}
	if input.Password != nil {
		hash, err := auth.HashPassword(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("hash new password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if err := s.producer.PublishUserUpdated(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.updated event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user profile updated",
		slog.String("user_id", user.ID),
	)

	return user, nil
}

// DeleteAccount removes an account.
func (s *AccountService) DeleteAccount(ctx context.Context, userID string) error {
	rows, err := s.users.Delete(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("User does not exists")
	}

	s.logger.InfoContext(ctx, "user account deleted",
		slog.String("user_id", userID),
	)

	return nil
}
