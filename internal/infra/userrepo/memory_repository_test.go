package userrepo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/rencard-user/internal/domain/auth"
	"github.com/yanqian/rencard-user/internal/domain/user"
)

func sampleUser(id, email, phone string) user.User {
	return user.User{
		ID:          id,
		Email:       email,
		PhoneNumber: phone,
		BirthDate:   time.Date(1995, 4, 2, 0, 0, 0, 0, time.UTC),
		Sex:         "female",
	}
}

func TestMemoryRepository_UniqueConstraints(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, sampleUser("a", "anna@example.com", "+79990000001"))
	require.NoError(t, err)

	_, err = repo.Create(ctx, sampleUser("b", "anna@example.com", "+79990000002"))
	require.ErrorIs(t, err, auth.ErrEmailExists)

	_, err = repo.Create(ctx, sampleUser("c", "other@example.com", "+79990000001"))
	require.ErrorIs(t, err, auth.ErrPhoneExists)
}

func TestMemoryRepository_UpdateDemographicsReindexesPhone(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	_, err := repo.Create(ctx, sampleUser("a", "anna@example.com", "+79990000001"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, sampleUser("b", "bella@example.com", "+79990000002"))
	require.NoError(t, err)

	err = repo.UpdateDemographics(ctx, "a", user.Demographics{PhoneNumber: "+79990000002", Sex: "female"})
	require.ErrorIs(t, err, auth.ErrPhoneExists)

	err = repo.UpdateDemographics(ctx, "a", user.Demographics{PhoneNumber: "+79990000009", Sex: "male"})
	require.NoError(t, err)

	taken, err := repo.PhoneTaken(ctx, "+79990000001", "")
	require.NoError(t, err)
	require.False(t, taken)

	taken, err = repo.PhoneTaken(ctx, "+79990000009", "a")
	require.NoError(t, err)
	require.False(t, taken)

	taken, err = repo.PhoneTaken(ctx, "+79990000009", "b")
	require.NoError(t, err)
	require.True(t, taken)

	got, ok, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "male", got.Sex)
}

func TestMemoryRepository_UpdatePasswordHash(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	require.Error(t, repo.UpdatePasswordHash(ctx, "missing", "x"))

	_, err := repo.Create(ctx, sampleUser("a", "anna@example.com", "+79990000001"))
	require.NoError(t, err)
	require.NoError(t, repo.UpdatePasswordHash(ctx, "a", "new-hash"))

	got, _, err := repo.GetByEmail(ctx, "anna@example.com")
	require.NoError(t, err)
	require.Equal(t, "new-hash", got.PasswordHash)
}

func TestMemoryRepository_DeleteFreesIndexes(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	_, err := repo.Create(ctx, sampleUser("a", "anna@example.com", "+79990000001"))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "a"))
	require.NoError(t, repo.Delete(ctx, "a"))

	_, ok, err := repo.GetByEmail(ctx, "anna@example.com")
	require.NoError(t, err)
	require.False(t, ok)
	taken, err := repo.PhoneTaken(ctx, "+79990000001", "")
	require.NoError(t, err)
	require.False(t, taken)

	_, err = repo.Create(ctx, sampleUser("b", "anna@example.com", "+79990000001"))
	require.NoError(t, err)
}
