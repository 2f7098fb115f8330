// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/solhub/solhub/internal/auth")

// Service provides registration and authentication.
type Service struct {
	accounts AccountRepository
	hasher   PasswordHasher
	now      func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock overrides the clock used to timestamp login events.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService creates a new Service.
func NewService(accounts AccountRepository, hasher PasswordHasher, opts ...ServiceOption) (*Service, error) {
	if accounts == nil {
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("account repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("password hasher is required")
	}

	s := &Service{
		accounts: accounts,
		hasher:   hasher,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RegisterRequest carries the registration form.
type RegisterRequest struct {
	Identifier           string
	Password             string
	PasswordConfirmation string
	Profile              map[string]string
}

// Register creates a new account. It does not log the user in.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (err error) {
	ctx, span := tracer.Start(ctx, "auth.Register",
		trace.WithAttributes(attribute.String("auth.identifier", req.Identifier)))
	defer func() { endSpan(span, err) }()

	if req.Password != req.PasswordConfirmation {
		return oops.Code(CodePasswordMismatch).Wrap(ErrPasswordMismatch)
	}

	if err := ValidateIdentifier(req.Identifier); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return oops.Code(CodeHashingFailed).Wrap(errors.Join(ErrHashingFailed, err))
	}

	account, err := NewAccount(req.Identifier, hash, req.Profile)
	if err != nil {
		return err
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, ErrDuplicateIdentifier) {
			return oops.Code(CodeIdentifierTaken).
				With("identifier", req.Identifier).
				Wrap(ErrIdentifierTaken)
		}
		return storeError("create account", err)
	}

	return nil
}

// Authenticate verifies the credentials and records the login.
// The history write must succeed for the login to succeed.
func (s *Service) Authenticate(ctx context.Context, identifier, password, agentLabel string) (_ *User, err error) {
	ctx, span := tracer.Start(ctx, "auth.Authenticate",
		trace.WithAttributes(attribute.String("auth.identifier", identifier)))
	defer func() { endSpan(span, err) }()

	account, err := s.accounts.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code(CodeUserNotFound).
				With("identifier", identifier).
				Wrap(ErrUserNotFound)
		}
		return nil, storeError("get account", err)
	}

	ok, err := s.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		var hashErr *HashingError
		if !errors.As(err, &hashErr) {
			err = &HashingError{Err: err}
		}
		return nil, oops.Code(CodeHashingError).
			With("identifier", identifier).
			Wrap(err)
	}
	if !ok {
		return nil, oops.Code(CodeIncorrectPassword).
			With("identifier", identifier).
			Wrap(ErrIncorrectPassword)
	}

	history := AppendLoginEvent(account.LoginHistory, LoginEvent{
		Timestamp:  s.now(),
		AgentLabel: agentLabel,
	})

	if err := s.accounts.ReplaceLoginHistory(ctx, identifier, history); err != nil {
		return nil, storeError("replace login history", err)
	}

	return &User{
		Identifier:   account.Identifier,
		Profile:      cloneProfile(account.Profile),
		LoginHistory: history,
	}, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
