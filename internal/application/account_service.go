package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/medli/medli-api/internal/domain/entity"
	repo "github.com/medli/medli-api/internal/domain/repository"
	"github.com/medli/medli-api/pkg/apperror"
	"github.com/medli/medli-api/pkg/helpers"
)

const (
	MsgRegisterMissing     = "Please provide name, email, and password"
	MsgEmailRegistered     = "Email already registered"
	MsgLoginMissing        = "Please provide email and password"
	MsgInvalidCredentials  = "Invalid credentials"
	MsgEmailInUse          = "Email already in use"
	MsgUserNotFound        = "User not found"
	MsgPasswordMissing     = "Please provide current and new password"
	MsgWrongPassword       = "Current password is incorrect"
	MsgPasswordUpdated     = "Password updated successfully"
	MsgAccountDeleted      = "Account and all data deleted successfully"
	MsgNotAuthorized       = "Not authorized to access this route. Please login."
	MsgTokenInvalid        = "Not authorized. Token is invalid or expired."
	MsgUserGone            = "User no longer exists"
	MsgAuthServerError     = "Server error during authentication"
	msgRegisterServerError = "Server error during registration"
	msgLoginServerError    = "Server error during login"
	msgMeServerError       = "Server error fetching user data"
	msgProfileServerError  = "Server error updating profile"
	msgPasswordServerError = "Server error changing password"
	msgDeleteServerError   = "Server error deleting account"
)

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      entity.PublicUser
}

type AccountService struct {
	Users    repo.UserRepository
	JWT      *helpers.JWTManager
	Identity *IdentityCache
	Index    RecordingIndex
	Notifier *Notifier
	Logger   logrus.FieldLogger

	dummyOnce sync.Once
	dummyHash string
}

func NewAccountService(users repo.UserRepository, jwt *helpers.JWTManager, identity *IdentityCache, index RecordingIndex, notifier *Notifier, logger logrus.FieldLogger) *AccountService {
	return &AccountService{Users: users, JWT: jwt, Identity: identity, Index: index, Notifier: notifier, Logger: logger}
}

// Register creates the user and signs them in.
func (s *AccountService) Register(ctx context.Context, in RegisterInput, meta RequestMeta) (*AuthResult, error) {
	in.Normalize()
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, apperror.Invalid(MsgRegisterMissing)
	}

	if _, err := s.Users.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperror.ConflictErr(MsgEmailRegistered)
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.InternalErr(msgRegisterServerError, err)
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, apperror.InternalErr(msgRegisterServerError, err)
	}
	u := &entity.User{Name: in.Name, Email: in.Email, Password: hash}
	if err := s.Users.Create(ctx, u); err != nil {
		// Lost a race with a concurrent registration of the same address.
		if errors.Is(err, repo.ErrEmailTaken) {
			return nil, apperror.ConflictErr(MsgEmailRegistered)
		}
		return nil, apperror.InternalErr(msgRegisterServerError, err)
	}

	token, exp, err := s.JWT.Generate(u.ID)
	if err != nil {
		return nil, apperror.InternalErr(msgRegisterServerError, err)
	}
	s.Identity.Put(ctx, u)
	s.Notifier.Welcome(ctx, u, meta)
	if s.Logger != nil {
		s.Logger.WithField("user_id", u.ID).Info("user registered")
	}
	return &AuthResult{Token: token, ExpiresAt: exp, User: u.Public()}, nil
}

// Login fails with the same error for an unknown email and a wrong password.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Normalize()
	if in.Email == "" || in.Password == "" {
		return nil, apperror.Invalid(MsgLoginMissing)
	}

	u, err := s.Users.GetByEmail(ctx, in.Email)
	if errors.Is(err, repo.ErrNotFound) {
		// Spend a bcrypt comparison anyway so response time does not reveal the miss.
		helpers.CompareHashAndPassword(s.timingHash(), in.Password)
		return nil, apperror.Credentials(MsgInvalidCredentials)
	}
	if err != nil {
		return nil, apperror.InternalErr(msgLoginServerError, err)
	}
	if !helpers.CompareHashAndPassword(u.Password, in.Password) {
		return nil, apperror.Credentials(MsgInvalidCredentials)
	}

	token, exp, err := s.JWT.Generate(u.ID)
	if err != nil {
		return nil, apperror.InternalErr(msgLoginServerError, err)
	}
	s.Identity.Put(ctx, u)
	return &AuthResult{Token: token, ExpiresAt: exp, User: u.Summary()}, nil
}

func (s *AccountService) timingHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = helpers.HashPassword("medli-timing-placeholder")
	})
	return s.dummyHash
}

// Authenticate resolves a bearer token to the user it was issued for.
func (s *AccountService) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, apperror.Unauthorized(MsgNotAuthorized)
	}
	claims, err := s.JWT.Parse(token)
	if err != nil {
		return nil, apperror.Wrap(apperror.Unauthenticated, MsgTokenInvalid, err)
	}
	u, err := s.Identity.Lookup(ctx, claims.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.Unauthorized(MsgUserGone)
	}
	if err != nil {
		return nil, apperror.InternalErr(MsgAuthServerError, err)
	}
	return u, nil
}

// GetMe reloads the caller from the database.
func (s *AccountService) GetMe(ctx context.Context, userID string) (entity.PublicUser, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return entity.PublicUser{}, apperror.NotFoundErr(MsgUserNotFound)
	}
	if err != nil {
		return entity.PublicUser{}, apperror.InternalErr(msgMeServerError, err)
	}
	return u.Public(), nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID string, in ProfileInput, meta RequestMeta) (entity.PublicUser, error) {
	in.Normalize()
	u, err := s.Users.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return entity.PublicUser{}, apperror.NotFoundErr(MsgUserNotFound)
	}
	if err != nil {
		return entity.PublicUser{}, apperror.InternalErr(msgProfileServerError, err)
	}

	changes := map[string]string{}
	if in.Name != nil && *in.Name != u.Name {
		u.Name = *in.Name
		changes["Name"] = u.Name
	}
	if in.Email != nil && *in.Email != u.Email {
		taken, err := s.Users.EmailTakenByOther(ctx, *in.Email, u.ID)
		if err != nil {
			return entity.PublicUser{}, apperror.InternalErr(msgProfileServerError, err)
		}
		if taken {
			return entity.PublicUser{}, apperror.ConflictErr(MsgEmailInUse)
		}
		u.Email = *in.Email
		changes["Email"] = u.Email
	}

	if err := s.Users.Update(ctx, u); err != nil {
		switch {
		case errors.Is(err, repo.ErrEmailTaken):
			return entity.PublicUser{}, apperror.ConflictErr(MsgEmailInUse)
		case errors.Is(err, repo.ErrNotFound):
			return entity.PublicUser{}, apperror.NotFoundErr(MsgUserNotFound)
		}
		return entity.PublicUser{}, apperror.InternalErr(msgProfileServerError, err)
	}

	s.Identity.Put(ctx, u)
	if len(changes) > 0 {
		s.Notifier.ProfileUpdated(ctx, u, changes, meta)
	}
	return u.Updated(), nil
}

// ChangePassword replaces the hash. Issued tokens stay valid until they expire.
func (s *AccountService) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput, meta RequestMeta) error {
	if in.CurrentPassword == "" || in.NewPassword == "" {
		return apperror.Invalid(MsgPasswordMissing)
	}
	u, err := s.Users.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return apperror.NotFoundErr(MsgUserNotFound)
	}
	if err != nil {
		return apperror.InternalErr(msgPasswordServerError, err)
	}
	if !helpers.CompareHashAndPassword(u.Password, in.CurrentPassword) {
		return apperror.Credentials(MsgWrongPassword)
	}

	hash, err := helpers.HashPassword(in.NewPassword)
	if err != nil {
		return apperror.InternalErr(msgPasswordServerError, err)
	}
	if err := s.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperror.NotFoundErr(MsgUserNotFound)
		}
		return apperror.InternalErr(msgPasswordServerError, err)
	}
	s.Notifier.PasswordChanged(ctx, u, meta)
	return nil
}

// DeleteAccount removes the user and their health record in one transaction,
// then clears the cache and the search index.
func (s *AccountService) DeleteAccount(ctx context.Context, u *entity.User, meta RequestMeta) error {
	if err := s.Users.DeleteCascade(ctx, u.ID); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return apperror.InternalErr(msgDeleteServerError, err)
	}

	s.Identity.Evict(ctx, u.ID)
	if s.Index != nil {
		if err := s.Index.DeleteUser(ctx, u.ID); err != nil {
			helpers.LogWarn(s.Logger, "recording index cleanup failed", err, logrus.Fields{"user_id": u.ID})
		}
	}
	s.Notifier.AccountDeleted(ctx, u, meta)
	if s.Logger != nil {
		s.Logger.WithField("user_id", u.ID).Info("account deleted")
	}
	return nil
}
