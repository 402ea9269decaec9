package user_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yanqian/rencard-user/internal/domain/auth"
	"github.com/yanqian/rencard-user/internal/domain/user"
	"github.com/yanqian/rencard-user/internal/infra/userrepo"
	"github.com/yanqian/rencard-user/pkg/password"
)

type recordingProvisioner struct {
	ids []string
	err error
}

func (p *recordingProvisioner) Provision(_ context.Context, userID string) error {
	p.ids = append(p.ids, userID)
	return p.err
}

func newDirectory(t *testing.T, prov user.Provisioner) *user.Directory {
	t.Helper()
	return user.NewDirectory(
		userrepo.NewMemoryRepository(),
		password.NewBcrypt(bcrypt.MinCost),
		prov,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func newAccount(email, phone, pw string) auth.NewUser {
	return auth.NewUser{
		Email:       email,
		Password:    pw,
		PhoneNumber: phone,
		BirthDate:   time.Now().AddDate(-30, 0, 0),
		Sex:         "male",
	}
}

func requireRejected(t *testing.T, err error, kind auth.FailureKind, messages ...string) {
	t.Helper()
	dirErr, ok := auth.AsDirectoryError(err)
	require.True(t, ok, "expected directory error, got %v", err)
	require.Equal(t, kind, dirErr.Kind)
	require.Equal(t, messages, dirErr.Messages)
}

func TestDirectory_CreateUser(t *testing.T) {
	prov := &recordingProvisioner{}
	dir := newDirectory(t, prov)
	ctx := context.Background()

	p, err := dir.CreateUser(ctx, newAccount("Ivan@Example.com", "+79991112233", "Secret#1"))
	require.NoError(t, err)
	require.Equal(t, "ivan@example.com", p.Email)
	require.Equal(t, []string{p.ID}, prov.ids)

	found, ok, err := dir.FindByEmail(ctx, "IVAN@example.com")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, p, found)

	byID, ok, err := dir.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, p, byID)

	_, err = dir.CreateUser(ctx, newAccount("ivan@example.com", "+79991112234", "Secret#1"))
	requireRejected(t, err, auth.FailureConflict, "Email 'ivan@example.com' is already taken.")

	_, err = dir.CreateUser(ctx, newAccount("petr@example.com", "+79991112233", "Secret#1"))
	requireRejected(t, err, auth.FailureConflict, "Phone number '+79991112233' is already taken.")

	_, err = dir.CreateUser(ctx, newAccount("petr@example.com", "+79991112235", "secret#1"))
	requireRejected(t, err, auth.FailureValidation, "Passwords must have at least one uppercase ('A'-'Z').")
}

func TestDirectory_FindByIDIgnoresMalformedIDs(t *testing.T) {
	dir := newDirectory(t, nil)
	_, ok, err := dir.FindByID(context.Background(), "not-a-uuid")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDirectory_ProvisioningFailure(t *testing.T) {
	prov := &recordingProvisioner{err: errors.New("db down")}
	dir := newDirectory(t, prov)
	ctx := context.Background()

	_, err := dir.CreateUser(ctx, newAccount("ivan@example.com", "+79991112233", "Secret#1"))
	require.Error(t, err)
	_, isDirErr := auth.AsDirectoryError(err)
	require.False(t, isDirErr)

	_, found, err := dir.FindByEmail(ctx, "ivan@example.com")
	require.NoError(t, err)
	require.False(t, found, "a failed registration must not leave the account behind")

	prov.err = nil
	p, err := dir.CreateUser(ctx, newAccount("ivan@example.com", "+79991112233", "Secret#1"))
	require.NoError(t, err)
	require.Len(t, prov.ids, 2)
	require.Equal(t, p.ID, prov.ids[1])
}

func TestDirectory_PasswordLifecycle(t *testing.T) {
	dir := newDirectory(t, nil)
	ctx := context.Background()
	p, err := dir.CreateUser(ctx, newAccount("ivan@example.com", "+79991112233", "Secret#1"))
	require.NoError(t, err)

	ok, err := dir.VerifyPassword(ctx, p, "Secret#1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = dir.VerifyPassword(ctx, p, "Secret#2")
	require.NoError(t, err)
	require.False(t, ok)

	requireRejected(t, dir.ChangePassword(ctx, p, "wrong", "Better#2"), auth.FailureValidation, "Incorrect password.")
	requireRejected(t, dir.ChangePassword(ctx, p, "Secret#1", "better#2"), auth.FailureValidation,
		"Passwords must have at least one uppercase ('A'-'Z').")

	require.NoError(t, dir.ChangePassword(ctx, p, "Secret#1", "Better#2"))
	ok, err = dir.VerifyPassword(ctx, p, "Better#2")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = dir.VerifyPassword(ctx, p, "Secret#1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDirectory_UpdateDemographics(t *testing.T) {
	dir := newDirectory(t, nil)
	ctx := context.Background()
	ivan, err := dir.CreateUser(ctx, newAccount("ivan@example.com", "+79991112233", "Secret#1"))
	require.NoError(t, err)
	_, err = dir.CreateUser(ctx, newAccount("petr@example.com", "+79991112234", "Secret#1"))
	require.NoError(t, err)

	adult := time.Now().AddDate(-20, 0, 0)

	err = dir.UpdateDemographics(ctx, ivan.ID, user.Demographics{BirthDate: time.Now().AddDate(-17, 0, 0), Sex: "male", PhoneNumber: "+79991112299"})
	requireRejected(t, err, auth.FailureValidation, auth.MsgUnderage)

	err = dir.UpdateDemographics(ctx, ivan.ID, user.Demographics{BirthDate: adult, Sex: "male", PhoneNumber: "+79991112234"})
	requireRejected(t, err, auth.FailureConflict, "Phone number is already in use")

	require.NoError(t, dir.UpdateDemographics(ctx, ivan.ID, user.Demographics{BirthDate: adult, Sex: "male", PhoneNumber: "+79991112233"}))
	require.NoError(t, dir.UpdateDemographics(ctx, ivan.ID, user.Demographics{BirthDate: adult, Sex: "female", PhoneNumber: "+79991112200"}))

	err = dir.UpdateDemographics(ctx, "6f1c0a52-55b4-4b8a-9d43-2d1fca1e0000", user.Demographics{BirthDate: adult, Sex: "male", PhoneNumber: "+79991112201"})
	requireRejected(t, err, auth.FailureAuthentication, auth.MsgUserNotFound)
}
