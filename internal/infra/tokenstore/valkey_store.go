package tokenstore

import (
	"context"
	"encoding/json"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/rencard-user/internal/domain/auth"
	"github.com/yanqian/rencard-user/pkg/util"
)

// ValkeyStore persists refresh tokens using a Valkey-compatible database.
// Each owner maps to one key; SET overwrites it in a single command.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "refresh"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) Replace(ctx context.Context, ownerID, value string) error {
	payload, err := json.Marshal(auth.RefreshTokenRecord{OwnerID: ownerID, Value: value, IssuedAt: util.NowUTC()})
	if err != nil {
		return err
	}
	return s.client.Do(ctx, s.client.B().Set().Key(s.key(ownerID)).Value(string(payload)).Build()).Error()
}

func (s *ValkeyStore) Validate(ctx context.Context, ownerID, presented string) (bool, error) {
	payload, err := s.client.Do(ctx, s.client.B().Get().Key(s.key(ownerID)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return false, nil
		}
		return false, err
	}
	var record auth.RefreshTokenRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return false, err
	}
	return matches(record.Value, presented), nil
}

func (s *ValkeyStore) key(ownerID string) string {
	return s.prefix + ":" + ownerID
}

var _ auth.RefreshTokenStore = (*ValkeyStore)(nil)
