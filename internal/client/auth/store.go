package auth

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/logminer/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/logminer/internal/common"
	"github.com/dmitrijs2005/logminer/internal/dbx"
)

// Store persists the token pair across restarts.
type Store interface {
	Save(ctx context.Context, pair TokenPair) error
	// Load returns ok=false when nothing is persisted.
	Load(ctx context.Context) (pair TokenPair, ok bool, err error)
	Clear(ctx context.Context) error
}

// SQLiteStore keeps the pair in the metadata table under the access_token
// and refresh_token keys.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save writes both keys in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, pair TokenPair) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.AccessTokenKey, []byte(pair.AccessToken)); err != nil {
			return err
		}
		if pair.RefreshToken == "" {
			return repo.Delete(ctx, common.RefreshTokenKey)
		}
		return repo.Set(ctx, common.RefreshTokenKey, []byte(pair.RefreshToken))
	})
	if err != nil {
		return fmt.Errorf("save tokens: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (TokenPair, bool, error) {
	repo := metadata.NewSQLiteRepository(s.db)

	access, err := repo.Get(ctx, common.AccessTokenKey)
	if err != nil {
		return TokenPair{}, false, fmt.Errorf("load tokens: %w", err)
	}
	if len(access) == 0 {
		return TokenPair{}, false, nil
	}

	refresh, err := repo.Get(ctx, common.RefreshTokenKey)
	if err != nil {
		return TokenPair{}, false, fmt.Errorf("load tokens: %w", err)
	}

	return TokenPair{AccessToken: string(access), RefreshToken: string(refresh)}, true, nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	repo := metadata.NewSQLiteRepository(s.db)
	if err := repo.Delete(ctx, common.AccessTokenKey, common.RefreshTokenKey); err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}
	return nil
}
