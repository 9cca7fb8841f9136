// Package services contains server-side business logic. This file implements
// the authentication flows of UserService: login, refresh token rotation and
// logout.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskmanager/internal/common"
	"github.com/dmitrijs2005/taskmanager/internal/cryptox"
	"github.com/dmitrijs2005/taskmanager/internal/dbx"
	"github.com/dmitrijs2005/taskmanager/internal/logging"
	"github.com/dmitrijs2005/taskmanager/internal/server/auth"
	"github.com/dmitrijs2005/taskmanager/internal/server/models"
	"github.com/dmitrijs2005/taskmanager/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// TokenIssuer is implemented by auth.TokenManager.
type TokenIssuer interface {
	Issue(subject string, p auth.Payload, ttl time.Duration) (string, error)
	Revoke(ctx context.Context, c *auth.Claims) error
}

// UserService provides account and authentication operations.
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	hasher                       cryptox.Hasher
	tokens                       TokenIssuer
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	log                          logging.Logger
	now                          func() time.Time

	dummyOnce   sync.Once
	dummyDigest string
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher cryptox.Hasher, tokens TokenIssuer,
	accessTTL, refreshTTL time.Duration, l logging.Logger) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		hasher:                       hasher,
		tokens:                       tokens,
		accessTokenValidityDuration:  accessTTL,
		refreshTokenValidityDuration: refreshTTL,
		log:                          l.With("module", "users"),
		now:                          time.Now,
	}
}

// Login verifies email and password and returns a new TokenPair. Unknown
// users and wrong passwords both yield common.ErrInvalidCredentials after a
// full hash verification.
func (s *UserService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.burnVerify(password)
			return nil, common.ErrInvalidCredentials
		}
		s.log.Error(ctx, "user lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		s.log.Error(ctx, "stored credential unusable", "user_id", user.ID, "error", err)
		return nil, err
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}

	return s.generateTokenPair(ctx, user, s.db)
}

// burnVerify spends the same work as a real verification.
func (s *UserService) burnVerify(password string) {
	s.dummyOnce.Do(func() {
		d, err := s.hasher.Hash("not-a-real-password")
		if err == nil {
			s.dummyDigest = d
		}
	})
	if s.dummyDigest != "" {
		_, _ = s.hasher.Verify(password, s.dummyDigest)
	}
}

// RefreshToken redeems a refresh token and returns a fresh TokenPair. The
// old token is consumed inside the same transaction that stores the new one,
// so each refresh token can be exchanged once. Expired tokens are still
// consumed and yield ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var (
		pair    *TokenPair
		expired bool
	)
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		token, err := s.repomanager.RefreshTokens(tx).Consume(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidToken
			}
			return fmt.Errorf("error consuming refresh token: %w", err)
		}
		if token.Expired(s.now()) {
			expired = true
			return nil
		}
		user, err := s.repomanager.Users(tx).GetByID(ctx, token.UserID)
		if err != nil {
			return fmt.Errorf("error loading user: %w", err)
		}
		pair, err = s.generateTokenPair(ctx, user, tx)
		return err
	}); err != nil {
		return nil, err
	}
	if expired {
		return nil, common.ErrRefreshTokenExpired
	}
	return pair, nil
}

// PurgeExpiredRefreshTokens drops refresh tokens that can no longer be
// exchanged.
func (s *UserService) PurgeExpiredRefreshTokens(ctx context.Context) (int64, error) {
	n, err := s.repomanager.RefreshTokens(s.db).DeleteExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("error purging refresh tokens: %w", err)
	}
	if n > 0 {
		s.log.Info(ctx, "expired refresh tokens purged", "count", n)
	}
	return n, nil
}

// Logout revokes the presented access token and every refresh token of its
// subject.
func (s *UserService) Logout(ctx context.Context, claims *auth.Claims) error {
	if err := s.tokens.Revoke(ctx, claims); err != nil {
		return fmt.Errorf("error revoking token: %w", err)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return common.ErrTokenMalformed
	}
	if err := s.repomanager.RefreshTokens(s.db).DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("error deleting refresh tokens: %w", err)
	}
	return nil
}

func (s *UserService) generateTokenPair(ctx context.Context, user *models.User, tx dbx.DBTX) (*TokenPair, error) {
	access, err := s.tokens.Issue(strconv.FormatInt(user.ID, 10), auth.Payload{
		Email: user.Email,
		Roles: user.Roles,
	}, s.accessTokenValidityDuration)
	if err != nil {
		s.log.Error(ctx, "issue access token", "error", err)
		return nil, common.ErrorInternal
	}

	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}

	if err := s.repomanager.RefreshTokens(tx).Create(ctx, user.ID, refresh, s.refreshTokenValidityDuration); err != nil {
		s.log.Error(ctx, "store refresh token", "error", err)
		return nil, common.ErrorInternal
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.accessTokenValidityDuration,
	}, nil
}
