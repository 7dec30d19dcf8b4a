// Package services contains server-side business logic. This file implements
// AccountService, which owns every account state transition: registration,
// authentication, listing, updates, and soft deletion, plus issuing and
// refreshing the JWT/refresh-token pairs the HTTP layer hands to clients.
package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/avolkovs/accountd/internal/common"
	"github.com/avolkovs/accountd/internal/cryptox"
	"github.com/avolkovs/accountd/internal/dbx"
	"github.com/avolkovs/accountd/internal/logging"
	"github.com/avolkovs/accountd/internal/server/auth"
	"github.com/avolkovs/accountd/internal/server/config"
	"github.com/avolkovs/accountd/internal/server/models"
	"github.com/avolkovs/accountd/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AccountService provides account lifecycle operations over an abstract
// store. Uniqueness checks here are a fast-path courtesy to the caller; the
// store's partial unique indexes are the correctness backstop for concurrent
// registrations racing the check.
type AccountService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	hasher                       *cryptox.Hasher
	logger                       logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewAccountService constructs an AccountService using repositories, the
// credential hasher, and server config.
func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, h *cryptox.Hasher, l logging.Logger, cfg *config.Config) *AccountService {
	return &AccountService{
		db:                           db,
		repomanager:                  m,
		hasher:                       h,
		logger:                       l.With("module", "accounts"),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Register validates the candidate, rejects usernames and emails already held
// by an active account, and persists a new active account with the hashed
// password. It returns the id the store assigned.
//
// Storage faults come back as common.ErrOperationFailed; the cause is logged
// here and never surfaced to the caller.
func (s *AccountService) Register(ctx context.Context, req *RegisterRequest) (string, error) {

	if err := validateRegisterRequest(req); err != nil {
		return "", err
	}

	repo := s.repomanager.Accounts(s.db)

	taken, err := repo.ExistsActiveWithUsername(ctx, req.Username)
	if err != nil {
		s.logger.Error(ctx, "username uniqueness check failed", "error", err)
		return "", common.ErrOperationFailed
	}
	if taken {
		return "", common.ErrDuplicateUsername
	}

	taken, err = repo.ExistsActiveWithEmail(ctx, req.Email)
	if err != nil {
		s.logger.Error(ctx, "email uniqueness check failed", "error", err)
		return "", common.ErrOperationFailed
	}
	if taken {
		return "", common.ErrDuplicateEmail
	}

	account := &models.Account{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: s.hasher.Hash(req.Password),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		CreatedAt:    time.Now(),
		Active:       true,
	}

	created, err := repo.Create(ctx, account)
	if err != nil {
		s.logger.Error(ctx, "account insert failed", "error", err)
		return "", common.ErrOperationFailed
	}

	s.logger.Info(ctx, "account registered", "username", created.Username)
	return created.ID, nil
}

// Authenticate returns the active account matching username if the password
// checks out. An unknown username, a wrong password, and a storage fault all
// yield common.ErrInvalidCredentials so callers cannot enumerate usernames.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*models.Account, error) {
	repo := s.repomanager.Accounts(s.db)

	account, err := repo.GetByUsernameActive(ctx, username)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.logger.Error(ctx, "account lookup failed", "error", err)
		}
		// hash anyway so the miss path costs the same as a wrong password
		s.hasher.Hash(password)
		return nil, common.ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	return account, nil
}

// ListActive returns active accounts, most recently created first. A storage
// fault degrades to an empty list; the error is logged, so an outage is at
// least visible in the logs even though callers see "no accounts".
func (s *AccountService) ListActive(ctx context.Context) []*models.Account {
	repo := s.repomanager.Accounts(s.db)

	result, err := repo.ListActive(ctx)
	if err != nil {
		s.logger.Error(ctx, "listing active accounts failed", "error", err)
		return []*models.Account{}
	}

	return result
}

// GetByID returns the account only if it exists and is active; any other
// outcome is common.ErrNotFound.
func (s *AccountService) GetByID(ctx context.Context, id string) (*models.Account, error) {
	repo := s.repomanager.Accounts(s.db)

	account, err := repo.GetByIDActive(ctx, id)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.logger.Error(ctx, "account lookup failed", "error", err)
		}
		return nil, common.ErrNotFound
	}

	return account, nil
}

// Update persists a full overwrite of the account's fields. Uniqueness is not
// re-checked; the caller is responsible for not introducing duplicates, and
// the store's indexes reject ones that slip through.
func (s *AccountService) Update(ctx context.Context, account *models.Account) error {
	repo := s.repomanager.Accounts(s.db)

	if err := repo.Save(ctx, account); err != nil {
		s.logger.Error(ctx, "account update failed", "error", err)
		return common.ErrOperationFailed
	}

	return nil
}

// Deactivate soft-deletes the account: the row stays, active flips to false.
// The lookup ignores the active flag, so deactivating an already-inactive
// account finds it, re-sets active=false, and reports success.
func (s *AccountService) Deactivate(ctx context.Context, id string) error {
	repo := s.repomanager.Accounts(s.db)

	account, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		s.logger.Error(ctx, "account lookup failed", "error", err)
		return common.ErrOperationFailed
	}

	account.Active = false

	if err := repo.Save(ctx, account); err != nil {
		s.logger.Error(ctx, "account deactivation failed", "error", err)
		return common.ErrOperationFailed
	}

	s.logger.Info(ctx, "account deactivated", "username", account.Username)
	return nil
}

// Login authenticates the credentials and, on success, mints a TokenPair.
func (s *AccountService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	account, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	return s.generateTokenPair(ctx, account.ID, s.db)
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Expired tokens yield ErrRefreshTokenExpired.
func (s *AccountService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidToken
		}
		s.logger.Error(ctx, "refresh token lookup failed", "error", err)
		return nil, common.ErrOperationFailed
	}
	if token.Expires.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.RefreshTokens(tx)
		if err := repoTx.Delete(ctx, refreshToken); err != nil {
			return err
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, token.AccountID, tx)
		return genErr
	}); err != nil {
		if errors.Is(err, common.ErrInternal) {
			return nil, common.ErrInternal
		}
		s.logger.Error(ctx, "refresh token rotation failed", "error", err)
		return nil, common.ErrOperationFailed
	}
	return pair, nil
}

// --- helpers below ---

func (s *AccountService) generateAccessToken(accountID string) (string, error) {
	return auth.GenerateToken(accountID, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *AccountService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *AccountService) generateTokenPair(ctx context.Context, accountID string, tx dbx.DBTX) (*TokenPair, error) {
	access, err := s.generateAccessToken(accountID)
	if err != nil {
		return nil, common.ErrInternal
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrInternal
	}
	refreshRepo := s.repomanager.RefreshTokens(tx)
	if err := refreshRepo.Create(ctx, accountID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
