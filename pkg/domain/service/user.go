package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/pkg/domain/model"
)

var ErrPasswordTooShort = errors.New("password is too short")

const (
	minPasswordLength = 6
	resetTokenBytes   = 20
)

// Session is an authenticated principal together with its bearer token.
type Session struct {
	UserID   primitive.ObjectID
	Username string
	Email    string
	Role     string
	Token    string
}

type UserDetails struct {
	User       *model.User
	OrderCount int64
}

type UserService interface {
	Register(ctx context.Context, username, email, password string) (*Session, error)
	VerifyOTP(ctx context.Context, pendingID primitive.ObjectID, otp string) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	// Authenticate resolves a bearer token to a registered or pending user id.
	Authenticate(ctx context.Context, token string) (primitive.ObjectID, error)

	CurrentUser(ctx context.Context, userID primitive.ObjectID) (*model.User, error)
	UpdateProfileImage(ctx context.Context, userID primitive.ObjectID, imageURL string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, userID primitive.ObjectID) (*UserDetails, error)
	DeleteUser(ctx context.Context, userID primitive.ObjectID) error

	// RegisterAdmin creates an active account without OTP confirmation.
	// Asking for the admin or superadmin role requires a superadmin actor.
	RegisterAdmin(ctx context.Context, actorID primitive.ObjectID, username, email, password, role string) (*Session, error)
	// CreateAdmin is RegisterAdmin with the admin role.
	CreateAdmin(ctx context.Context, actorID primitive.ObjectID, username, email, password string) (*Session, error)
	LoginAdmin(ctx context.Context, email, password string) (*Session, error)
	// BootstrapSuperAdmin creates the first superadmin from the command line.
	BootstrapSuperAdmin(ctx context.Context, username, email, password string) (*Session, error)
}

func NewUserService(
	users model.UserRepository,
	pending model.PendingUserRepository,
	orders model.OrderRepository,
	passManager model.PasswordManager,
	tokens model.TokenManager,
	notifier Notifier,
	dispatcher EventDispatcher,
) UserService {
	return &userService{
		users:       users,
		pending:     pending,
		orders:      orders,
		passManager: passManager,
		tokens:      tokens,
		notifier:    notifier,
		dispatcher:  dispatcher,
	}
}

type userService struct {
	users       model.UserRepository
	pending     model.PendingUserRepository
	orders      model.OrderRepository
	passManager model.PasswordManager
	tokens      model.TokenManager
	notifier    Notifier
	dispatcher  EventDispatcher
}

func (s *userService) Register(ctx context.Context, username, email, password string) (*Session, error) {
	username, email = strings.TrimSpace(username), normalizeEmail(email)
	if username == "" || email == "" || password == "" {
		return nil, model.NewValidationError("please enter all the fields")
	}
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}

	hashedPassword, err := s.passManager.Hash(password)
	if err != nil {
		return nil, err
	}
	otp, err := generateOTP()
	if err != nil {
		return nil, err
	}

	pendingUser := &model.PendingUser{
		ID:             s.pending.NextID(),
		Username:       username,
		Email:          email,
		HashedPassword: hashedPassword,
		OTP:            otp,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.pending.Create(ctx, pendingUser); err != nil {
		return nil, err
	}

	s.notifier.SendOTP(email, otp)

	token, err := s.tokens.Issue(pendingUser.ID)
	if err != nil {
		return nil, err
	}
	return &Session{UserID: pendingUser.ID, Username: username, Email: email, Token: token}, nil
}

func (s *userService) VerifyOTP(ctx context.Context, pendingID primitive.ObjectID, otp string) (*Session, error) {
	otp = strings.TrimSpace(otp)
	if otp == "" {
		return nil, model.NewValidationError("please enter the OTP")
	}

	pendingUser, err := s.pending.Find(ctx, pendingID)
	if err != nil {
		return nil, err
	}
	if time.Since(pendingUser.CreatedAt) > model.PendingUserTTL {
		return nil, model.ErrPendingUserNotFound
	}
	if pendingUser.OTP != otp {
		return nil, model.ErrInvalidOTP
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:             s.users.NextID(),
		Username:       pendingUser.Username,
		Email:          pendingUser.Email,
		HashedPassword: pendingUser.HashedPassword,
		Role:           model.RoleUser,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	if err := s.pending.Delete(ctx, pendingID); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.UserRegistered{UserID: user.ID, Email: user.Email, Username: user.Username})
	return s.session(user)
}

func (s *userService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, model.NewValidationError("please enter all the fields")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		return nil, model.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, err := s.passManager.Check(user.HashedPassword, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.ErrInvalidCredentials
	}
	return s.session(user)
}

func (s *userService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return model.NewValidationError("email is required")
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return errors.Wrap(err, "failed to generate reset token")
	}
	token := hex.EncodeToString(b)
	expires := time.Now().UTC().Add(model.ResetTokenTTL)

	user.ResetToken = token
	user.ResetExpiresAt = &expires
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.notifier.SendPasswordReset(user.Email, token)
	return nil
}

func (s *userService) ResetPassword(ctx context.Context, token, password string) error {
	if token == "" || password == "" {
		return model.NewValidationError("token and new password are required")
	}
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}

	user, err := s.users.FindByResetToken(ctx, token, time.Now().UTC())
	if errors.Is(err, model.ErrUserNotFound) {
		return model.ErrInvalidResetToken
	}
	if err != nil {
		return err
	}

	hashedPassword, err := s.passManager.Hash(password)
	if err != nil {
		return err
	}
	user.HashedPassword = hashedPassword
	user.ResetToken = ""
	user.ResetExpiresAt = nil
	user.UpdatedAt = time.Now().UTC()
	return s.users.Update(ctx, user)
}

func (s *userService) Authenticate(ctx context.Context, token string) (primitive.ObjectID, error) {
	id, err := s.tokens.Parse(token)
	if err != nil {
		return primitive.NilObjectID, model.ErrUnauthorized
	}
	if _, err := s.users.Find(ctx, id); err == nil {
		return id, nil
	} else if !errors.Is(err, model.ErrUserNotFound) {
		return primitive.NilObjectID, err
	}
	if _, err := s.pending.Find(ctx, id); err == nil {
		return id, nil
	} else if !errors.Is(err, model.ErrPendingUserNotFound) {
		return primitive.NilObjectID, err
	}
	return primitive.NilObjectID, model.ErrUnauthorized
}

func (s *userService) CurrentUser(ctx context.Context, userID primitive.ObjectID) (*model.User, error) {
	return s.users.Find(ctx, userID)
}

func (s *userService) UpdateProfileImage(ctx context.Context, userID primitive.ObjectID, imageURL string) (*model.User, error) {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return nil, model.NewValidationError("imageUrl is required")
	}
	user, err := s.users.Find(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.ProfileImage = imageURL
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.FindAll(ctx)
}

func (s *userService) GetUser(ctx context.Context, userID primitive.ObjectID) (*UserDetails, error) {
	user, err := s.users.Find(ctx, userID)
	if err != nil {
		return nil, err
	}
	count, err := s.orders.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserDetails{User: user, OrderCount: count}, nil
}

func (s *userService) DeleteUser(ctx context.Context, userID primitive.ObjectID) error {
	if _, err := s.users.Find(ctx, userID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	_ = s.dispatcher.Dispatch(model.UserDeleted{UserID: userID})
	return nil
}

func (s *userService) RegisterAdmin(ctx context.Context, actorID primitive.ObjectID, username, email, password, role string) (*Session, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	switch role {
	case "", model.RoleUser:
		role = model.RoleUser
	case model.RoleAdmin, model.RoleSuperAdmin:
		if err := s.requireSuperAdmin(ctx, actorID); err != nil {
			return nil, err
		}
	default:
		return nil, model.NewValidationError("role must be one of user admin superadmin")
	}
	return s.createAccount(ctx, username, email, password, role)
}

func (s *userService) CreateAdmin(ctx context.Context, actorID primitive.ObjectID, username, email, password string) (*Session, error) {
	return s.RegisterAdmin(ctx, actorID, username, email, password, model.RoleAdmin)
}

func (s *userService) LoginAdmin(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, model.NewValidationError("please enter all the fields")
	}
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		return nil, model.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	ok, err := s.passManager.Check(user.HashedPassword, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.ErrInvalidCredentials
	}
	if !user.IsAdmin() {
		return nil, model.ErrNotAdmin
	}
	return s.session(user)
}

func (s *userService) BootstrapSuperAdmin(ctx context.Context, username, email, password string) (*Session, error) {
	return s.createAccount(ctx, username, email, password, model.RoleSuperAdmin)
}

func (s *userService) requireSuperAdmin(ctx context.Context, actorID primitive.ObjectID) error {
	if actorID.IsZero() {
		return model.ErrForbidden
	}
	actor, err := s.users.Find(ctx, actorID)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.ErrForbidden
	}
	if err != nil {
		return err
	}
	if actor.Role != model.RoleSuperAdmin {
		return model.ErrForbidden
	}
	return nil
}

func (s *userService) createAccount(ctx context.Context, username, email, password, role string) (*Session, error) {
	username, email = strings.TrimSpace(username), normalizeEmail(email)
	if username == "" || email == "" || password == "" {
		return nil, model.NewValidationError("please enter all the fields")
	}
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}
	hashedPassword, err := s.passManager.Hash(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:             s.users.NextID(),
		Username:       username,
		Email:          email,
		HashedPassword: hashedPassword,
		Role:           role,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.UserRegistered{UserID: user.ID, Email: user.Email, Username: user.Username})
	return s.session(user)
}

// ensureEmailFree checks registered and pending accounts. Lookup failures
// other than not found are returned as is.
func (s *userService) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return model.ErrEmailTaken
	case !errors.Is(err, model.ErrUserNotFound):
		return err
	}
	_, err = s.pending.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return model.ErrEmailTaken
	case !errors.Is(err, model.ErrPendingUserNotFound):
		return err
	}
	return nil
}

func (s *userService) session(user *model.User) (*Session, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{UserID: user.ID, Username: user.Username, Email: user.Email, Role: user.Role, Token: token}, nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", errors.Wrap(err, "failed to generate otp")
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
