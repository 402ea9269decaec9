package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/rencard-user/internal/domain/auth"
	apperrors "github.com/yanqian/rencard-user/pkg/errors"
	"github.com/yanqian/rencard-user/pkg/password"
	"github.com/yanqian/rencard-user/pkg/util"
)

const (
	msgIncorrectPassword = "Incorrect password."
	msgPhoneInUse        = "Phone number is already in use"
)

// Directory implements auth.UserDirectory on top of a Repository.
type Directory struct {
	repo        Repository
	hasher      password.Hasher
	provisioner Provisioner
	logger      *slog.Logger
	now         func() time.Time
}

// NewDirectory wires the directory. provisioner may be nil.
func NewDirectory(repo Repository, hasher password.Hasher, provisioner Provisioner, logger *slog.Logger) *Directory {
	return &Directory{
		repo:        repo,
		hasher:      hasher,
		provisioner: provisioner,
		logger:      logger.With("component", "user.directory"),
		now:         util.NowUTC,
	}
}

var _ auth.UserDirectory = (*Directory)(nil)

func (d *Directory) FindByEmail(ctx context.Context, email string) (auth.Principal, bool, error) {
	u, ok, err := d.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil || !ok {
		return auth.Principal{}, false, err
	}
	return principalOf(u), true, nil
}

func (d *Directory) FindByID(ctx context.Context, id string) (auth.Principal, bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return auth.Principal{}, false, nil
	}
	u, ok, err := d.repo.GetByID(ctx, id)
	if err != nil || !ok {
		return auth.Principal{}, false, err
	}
	return principalOf(u), true, nil
}

// CreateUser enforces the password policy, hashes the password, stores the
// account and provisions its default profile.
func (d *Directory) CreateUser(ctx context.Context, nu auth.NewUser) (auth.Principal, error) {
	if errs := CheckPassword(nu.Password); len(errs) > 0 {
		return auth.Principal{}, auth.Reject(auth.FailureValidation, errs...)
	}
	email := strings.ToLower(strings.TrimSpace(nu.Email))
	hash, err := d.hasher.Hash(nu.Password)
	if err != nil {
		return auth.Principal{}, apperrors.Wrap(apperrors.CodeAuth, "failed to hash password", err)
	}
	now := d.now()
	created, err := d.repo.Create(ctx, User{
		ID:           uuid.NewString(),
		Email:        email,
		PhoneNumber:  nu.PhoneNumber,
		PasswordHash: hash,
		BirthDate:    util.DateOnly(nu.BirthDate),
		Sex:          nu.Sex,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	switch {
	case errors.Is(err, auth.ErrEmailExists):
		return auth.Principal{}, auth.Reject(auth.FailureConflict, fmt.Sprintf("Email '%s' is already taken.", email))
	case errors.Is(err, auth.ErrPhoneExists):
		return auth.Principal{}, auth.Reject(auth.FailureConflict, fmt.Sprintf("Phone number '%s' is already taken.", nu.PhoneNumber))
	case err != nil:
		return auth.Principal{}, apperrors.Wrap(apperrors.CodeStorage, "failed to create user", err)
	}
	if d.provisioner != nil {
		if err := d.provisioner.Provision(ctx, created.ID); err != nil {
			d.logger.Error("profile provisioning failed", "user_id", created.ID, "error", err)
			d.discard(ctx, created.ID)
			return auth.Principal{}, apperrors.Wrap(apperrors.CodeProfile, "failed to provision profile", err)
		}
	}
	return principalOf(created), nil
}

// discard removes an account whose registration could not be completed, so
// the email and phone number stay free for a retry.
func (d *Directory) discard(ctx context.Context, id string) {
	if err := d.repo.Delete(context.WithoutCancel(ctx), id); err != nil {
		d.logger.Error("failed to remove partially registered user", "user_id", id, "error", err)
	}
}

func (d *Directory) VerifyPassword(ctx context.Context, principal auth.Principal, pw string) (bool, error) {
	u, ok, err := d.repo.GetByID(ctx, principal.ID)
	if err != nil || !ok {
		return false, err
	}
	ok, err = d.hasher.Verify(pw, u.PasswordHash)
	if errors.Is(err, password.ErrInvalidHash) {
		d.logger.Warn("stored password hash is unreadable", "user_id", u.ID)
		return false, nil
	}
	return ok, err
}

// ChangePassword verifies current before applying the policy to next.
func (d *Directory) ChangePassword(ctx context.Context, principal auth.Principal, current, next string) error {
	ok, err := d.VerifyPassword(ctx, principal, current)
	if err != nil {
		return err
	}
	if !ok {
		return auth.Reject(auth.FailureValidation, msgIncorrectPassword)
	}
	if errs := CheckPassword(next); len(errs) > 0 {
		return auth.Reject(auth.FailureValidation, errs...)
	}
	hash, err := d.hasher.Hash(next)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeAuth, "failed to hash password", err)
	}
	if err := d.repo.UpdatePasswordHash(ctx, principal.ID, hash); err != nil {
		return apperrors.Wrap(apperrors.CodeStorage, "failed to update password", err)
	}
	return nil
}

// UpdateDemographics validates and stores phone, sex and birth date. A phone
// number held by another account is rejected.
func (d *Directory) UpdateDemographics(ctx context.Context, id string, demo Demographics) error {
	if errs := auth.ValidateDemographics(demo.BirthDate, demo.Sex, demo.PhoneNumber, d.now()); len(errs) > 0 {
		return auth.Reject(auth.FailureValidation, errs...)
	}
	if _, ok, err := d.repo.GetByID(ctx, id); err != nil {
		return apperrors.Wrap(apperrors.CodeStorage, "failed to load user", err)
	} else if !ok {
		return auth.Reject(auth.FailureAuthentication, auth.MsgUserNotFound)
	}
	taken, err := d.repo.PhoneTaken(ctx, demo.PhoneNumber, id)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStorage, "failed to check phone number", err)
	}
	if taken {
		return auth.Reject(auth.FailureConflict, msgPhoneInUse)
	}
	demo.BirthDate = util.DateOnly(demo.BirthDate)
	err = d.repo.UpdateDemographics(ctx, id, demo)
	switch {
	case errors.Is(err, auth.ErrPhoneExists):
		return auth.Reject(auth.FailureConflict, msgPhoneInUse)
	case err != nil:
		return apperrors.Wrap(apperrors.CodeStorage, "failed to update user", err)
	}
	return nil
}

func principalOf(u User) auth.Principal {
	return auth.Principal{ID: u.ID, Email: u.Email}
}
