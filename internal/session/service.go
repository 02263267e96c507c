package session

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/badoux/checkmail"

	"github.com/ewasteapp/ewaste-client/internal/credentials"
	"github.com/ewasteapp/ewaste-client/internal/gateway"
)

var (
	ErrNoAuthToken      = errors.New("no authentication token")
	ErrInvalidEmail     = errors.New("email address is not valid")
	ErrPasswordMismatch = errors.New("new password and confirmation do not match")
)

// CredentialStore is the persisted session record. The session service is
// its single writer; reads are safe from anywhere.
type CredentialStore interface {
	Load() (*credentials.Record, error)
	Token() (string, error)
	SaveSession(token string, userID int64, email, username string) error
	SaveProfile(name, phone, address, birthDate, photoURL string) error
	Clear() error
}

// Gateway is the subset of the backend client the session service consumes.
type Gateway interface {
	Register(ctx context.Context, req gateway.RegisterRequest) (*gateway.BaseResponse, error)
	Login(ctx context.Context, req gateway.LoginRequest) (*gateway.UserData, error)
	VerifyOTP(ctx context.Context, code string) (*gateway.BaseResponse, error)
	ForgotPassword(ctx context.Context, email string) (*gateway.BaseResponse, error)
	ResetPassword(ctx context.Context, req gateway.ResetPasswordRequest) (*gateway.BaseResponse, error)
	UpdatePassword(ctx context.Context, token string, req gateway.UpdatePasswordRequest) (*gateway.BaseResponse, error)
	Profile(ctx context.Context, token string) (*gateway.UserData, error)
	UpdateProfile(ctx context.Context, token string, fields gateway.ProfileUpdate, photo []byte) (*gateway.BaseResponse, error)
	Logout(ctx context.Context, token string) (*gateway.BaseResponse, error)
}

// Profile is the cached identity plus the optional profile extension.
type Profile struct {
	UserID    int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	BirthDate string `json:"birth_date,omitempty"`
	PhotoURL  string `json:"photo_url,omitempty"`
}

type Service interface {
	Register(ctx context.Context, username, email, phone, password string) (string, error)
	VerifyOTP(ctx context.Context, code string, purpose Purpose) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, email, otpCode, newPassword string) (string, error)
	UpdatePassword(ctx context.Context, oldPassword, newPassword, confirmPassword string) (string, error)
	Profile(ctx context.Context) (*Profile, error)
	UpdateProfile(ctx context.Context, fields gateway.ProfileUpdate, photo []byte) (string, error)
	Logout(ctx context.Context) (string, error)
	IsLoggedIn() bool
	CachedProfile() (*Profile, error)
	TokenInfo() (*TokenInfo, error)
	State() State
	Subscribe() (<-chan State, func())
}

type service struct {
	gw     Gateway
	store  CredentialStore
	states *stateTracker
}

func NewService(gw Gateway, store CredentialStore) Service {
	s := &service{
		gw:     gw,
		store:  store,
		states: newStateTracker(),
	}
	if token, err := store.Token(); err == nil && token != "" {
		s.states.Set(State{Phase: PhaseAuthenticated})
	}
	return s
}

// ErrorMessage derives the display string for a failed operation: the
// server-provided message wins, then the operation-specific fallback.
func ErrorMessage(err error, fallback string) string {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func validateEmailAddress(email string) error {
	if err := checkmail.ValidateFormat(email); err != nil {
		fmt.Println("Email Validation FORMAT check error")
		return ErrInvalidEmail
	}
	return nil
}

// Register submits a new account. The backend sends the OTP out of band; a
// success therefore moves the session to otp_pending so the caller can
// collect the code.
func (s *service) Register(ctx context.Context, username, email, phone, password string) (string, error) {
	if err := validateEmailAddress(email); err != nil {
		return "", err
	}

	resp, err := s.gw.Register(ctx, gateway.RegisterRequest{
		Username:    username,
		Email:       email,
		PhoneNumber: phone,
		Password:    password,
	})
	if err != nil {
		s.states.Set(State{Phase: PhaseAnonymous, Message: ErrorMessage(err, "Registration failed")})
		return "", err
	}

	message := resp.Message
	if message == "" {
		message = "Registration successful"
	}
	s.states.Set(State{Phase: PhaseOTPPending, Purpose: PurposeRegister, Message: message})
	return message, nil
}

// VerifyOTP relays the code. On success the session is otp_verified tagged
// by purpose; the caller routes to login or password reset accordingly. A
// failed attempt leaves the current state alone so the user can retry.
func (s *service) VerifyOTP(ctx context.Context, code string, purpose Purpose) (string, error) {
	resp, err := s.gw.VerifyOTP(ctx, code)
	if err != nil {
		return "", err
	}

	message := resp.Message
	if message == "" {
		message = "OTP verified successfully"
	}
	s.states.Set(State{Phase: PhaseOTPVerified, Purpose: purpose, Message: message})
	return message, nil
}

// Login authenticates and persists the session. Success requires the
// backend's success flag; nothing is persisted otherwise. After the
// transition a profile fetch is chained best-effort.
func (s *service) Login(ctx context.Context, email, password string) (string, error) {
	if err := validateEmailAddress(email); err != nil {
		return "", err
	}

	s.states.Set(State{Phase: PhaseAuthenticating})
	data, err := s.gw.Login(ctx, gateway.LoginRequest{Email: email, Password: password})
	if err != nil {
		s.states.Set(State{Phase: PhaseAnonymous, Message: ErrorMessage(err, "Login failed")})
		return "", err
	}

	if err := s.store.SaveSession(data.Token, data.ID, data.Email, data.Username); err != nil {
		fmt.Println("error persisting session: ", err)
		s.states.Set(State{Phase: PhaseAnonymous, Message: "Login failed"})
		return "", err
	}
	if err := s.store.SaveProfile(data.Name, data.PhoneNumber, data.Address, data.BirthDate, data.PhotoURL); err != nil {
		log.Printf("session: could not persist profile fields from login: %v", err)
	}

	s.states.Set(State{Phase: PhaseAuthenticated, Message: "Login successful"})

	// Chained refresh; its failure must not revert the login.
	if _, err := s.Profile(ctx); err != nil {
		log.Printf("session: profile refresh after login failed: %v", err)
	}
	return "Login successful", nil
}

// ForgotPassword starts the recovery flow; the backend mails an OTP.
func (s *service) ForgotPassword(ctx context.Context, email string) (string, error) {
	if err := validateEmailAddress(email); err != nil {
		return "", err
	}

	resp, err := s.gw.ForgotPassword(ctx, email)
	if err != nil {
		return "", err
	}

	message := resp.Message
	if message == "" {
		message = "OTP sent successfully"
	}
	s.states.Set(State{Phase: PhaseOTPPending, Purpose: PurposeForgotPassword, Message: message})
	return message, nil
}

// ResetPassword completes the recovery flow. No session is created; the
// user logs in with the new password afterwards.
func (s *service) ResetPassword(ctx context.Context, email, otpCode, newPassword string) (string, error) {
	s.states.Set(State{Phase: PhasePasswordResetPending, Purpose: PurposeForgotPassword})
	resp, err := s.gw.ResetPassword(ctx, gateway.ResetPasswordRequest{
		Email:       email,
		OtpCode:     otpCode,
		NewPassword: newPassword,
	})
	if err != nil {
		s.states.Set(State{
			Phase:   PhasePasswordResetPending,
			Purpose: PurposeForgotPassword,
			Message: ErrorMessage(err, "Password reset failed"),
		})
		return "", err
	}

	message := resp.Message
	if message == "" {
		message = "Password reset successful"
	}
	s.states.Set(State{Phase: PhasePasswordResetDone, Message: message})
	return message, nil
}

// UpdatePassword changes the password of the logged-in user. The token
// precondition is checked before any network I/O.
func (s *service) UpdatePassword(ctx context.Context, oldPassword, newPassword, confirmPassword string) (string, error) {
	if newPassword != confirmPassword {
		return "", ErrPasswordMismatch
	}
	token, err := s.requireToken()
	if err != nil {
		return "", err
	}

	resp, err := s.gw.UpdatePassword(ctx, token, gateway.UpdatePasswordRequest{
		OldPassword:     oldPassword,
		NewPassword:     newPassword,
		ConfirmPassword: confirmPassword,
	})
	if err != nil {
		return "", err
	}

	message := resp.Message
	if message == "" {
		message = "Password updated successfully"
	}
	return message, nil
}

// Profile fetches the profile from the backend and merges the returned
// fields into the credential store.
func (s *service) Profile(ctx context.Context) (*Profile, error) {
	token, err := s.requireToken()
	if err != nil {
		return nil, err
	}

	data, err := s.gw.Profile(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := s.store.SaveProfile(data.Name, data.PhoneNumber, data.Address, data.BirthDate, data.PhotoURL); err != nil {
		log.Printf("session: could not persist fetched profile: %v", err)
	}

	return &Profile{
		UserID:    data.ID,
		Username:  data.Username,
		Email:     data.Email,
		Name:      data.Name,
		Phone:     data.PhoneNumber,
		Address:   data.Address,
		BirthDate: data.BirthDate,
		PhotoURL:  data.PhotoURL,
	}, nil
}

// UpdateProfile pushes edited fields (multipart when a photo is attached)
// and re-reads the profile afterwards so the cached copy matches whatever
// the backend actually stored. The refresh is best-effort.
func (s *service) UpdateProfile(ctx context.Context, fields gateway.ProfileUpdate, photo []byte) (string, error) {
	token, err := s.requireToken()
	if err != nil {
		return "", err
	}

	resp, err := s.gw.UpdateProfile(ctx, token, fields, photo)
	if err != nil {
		return "", err
	}

	if _, err := s.Profile(ctx); err != nil {
		log.Printf("session: profile refresh after update failed: %v", err)
	}

	message := resp.Message
	if message == "" {
		message = "Profile updated successfully"
	}
	return message, nil
}

// Logout is local-first: the gateway call is best-effort notification and
// the credential store is always cleared.
func (s *service) Logout(ctx context.Context) (string, error) {
	token, err := s.store.Token()
	if err == nil && token != "" {
		if _, err := s.gw.Logout(ctx, token); err != nil {
			log.Printf("session: logout notification failed: %v", err)
		}
	}

	if err := s.store.Clear(); err != nil {
		return "", err
	}
	s.states.Set(State{Phase: PhaseAnonymous, Message: "Logged out successfully"})
	return "Logged out successfully", nil
}

func (s *service) IsLoggedIn() bool {
	token, err := s.store.Token()
	return err == nil && token != ""
}

// CachedProfile returns the persisted record without touching the network.
func (s *service) CachedProfile() (*Profile, error) {
	record, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	return &Profile{
		UserID:    record.UserID,
		Email:     record.Email,
		Name:      record.Name,
		Phone:     record.Phone,
		Address:   record.Address,
		BirthDate: record.BirthDate,
		PhotoURL:  record.PhotoURL,
	}, nil
}

// TokenInfo parses the stored bearer token's claims without verification.
func (s *service) TokenInfo() (*TokenInfo, error) {
	token, err := s.requireToken()
	if err != nil {
		return nil, err
	}
	return parseTokenInfo(token)
}

func (s *service) State() State { return s.states.Current() }

func (s *service) Subscribe() (<-chan State, func()) { return s.states.Subscribe() }

func (s *service) requireToken() (string, error) {
	token, err := s.store.Token()
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrNoAuthToken
	}
	return token, nil
}
