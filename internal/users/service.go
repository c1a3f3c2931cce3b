package users

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/technosupport/ts-shopguard/internal/auth"
	"github.com/technosupport/ts-shopguard/internal/events"
	"github.com/technosupport/ts-shopguard/internal/motion"
	"github.com/technosupport/ts-shopguard/internal/tokens"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrBadShopHours       = errors.New("shop hours must be HH:MM")
)

// Service handles owner registration and dashboard sessions. Login and
// logout land in the event log alongside the surveillance events.
type Service struct {
	Store     Store
	Tokens    *tokens.Manager
	Blacklist auth.TokenBlacklist
	Events    events.Sink
}

func NewService(store Store, tm *tokens.Manager, bl auth.TokenBlacklist, sink events.Sink) *Service {
	return &Service{Store: store, Tokens: tm, Blacklist: bl, Events: sink}
}

// RegisterParams carries the owner registration form.
type RegisterParams struct {
	Email            string
	Password         string
	FirstName        string
	LastName         string
	MobileNumber     string
	AlternateNumbers []string
	ShopName         string
	ShopAddress      string
	OpeningTime      string
	ClosingTime      string
}

// Register creates the owner account. Hours default to 09:00-18:00 and
// sensitivity to the scoring default when left empty.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*Profile, error) {
	if params.Email == "" || params.Password == "" {
		return nil, ErrInvalidCredentials
	}
	if _, err := s.Store.GetByEmail(ctx, params.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if params.OpeningTime == "" {
		params.OpeningTime = "09:00"
	}
	if params.ClosingTime == "" {
		params.ClosingTime = "18:00"
	}
	if err := validateHours(params.OpeningTime, params.ClosingTime); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	p := Profile{
		ID:               uuid.New(),
		Email:            params.Email,
		PasswordHash:     hash,
		FirstName:        params.FirstName,
		LastName:         params.LastName,
		MobileNumber:     params.MobileNumber,
		AlternateNumbers: params.AlternateNumbers,
		ShopName:         params.ShopName,
		ShopAddress:      params.ShopAddress,
		OpeningTime:      params.OpeningTime,
		ClosingTime:      params.ClosingTime,
		Sensitivity:      motion.DefaultSensitivity,
		CreatedAt:        time.Now(),
	}
	if err := s.Store.Save(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Login verifies the password and issues a session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *Profile, error) {
	p, err := s.Store.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	match, err := auth.CheckPassword(password, p.PasswordHash)
	if err != nil || !match {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.Tokens.Generate(p.ID.String(), p.Email, p.ShopName)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	s.appendEvent(ctx, events.KindLogin, "Owner logged in: "+p.Email)
	return token, p, nil
}

// Logout revokes the session token for the rest of its lifetime.
func (s *Service) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.Tokens.Validate(tokenString)
	if err != nil {
		return tokens.ErrInvalidToken
	}
	if err := s.Blacklist.Revoke(ctx, claims.ID, s.Tokens.TTL()); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	s.appendEvent(ctx, events.KindLogout, "Owner logged out")
	return nil
}

// UpdateHours changes the shop opening window.
func (s *Service) UpdateHours(ctx context.Context, email, opening, closing string) (*Profile, error) {
	if err := validateHours(opening, closing); err != nil {
		return nil, err
	}

	p, err := s.Store.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	p.OpeningTime = opening
	p.ClosingTime = closing
	if err := s.Store.Save(ctx, *p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateSensitivity persists the owner's preferred sensitivity so it
// survives restarts. The live value is applied on the controller.
func (s *Service) UpdateSensitivity(ctx context.Context, email string, sensitivity int) (*Profile, error) {
	p, err := s.Store.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	p.Sensitivity = motion.ClampSensitivity(sensitivity)
	if err := s.Store.Save(ctx, *p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, email string) (*Profile, error) {
	return s.Store.GetByEmail(ctx, email)
}

func validateHours(opening, closing string) error {
	for _, v := range []string{opening, closing} {
		if _, err := time.Parse("15:04", v); err != nil {
			return ErrBadShopHours
		}
	}
	return nil
}

func (s *Service) appendEvent(ctx context.Context, kind events.Kind, details string) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Append(ctx, events.New(kind, details)); err != nil {
		log.Printf("[ERROR] Users: append %s event: %v", kind, err)
	}
}
