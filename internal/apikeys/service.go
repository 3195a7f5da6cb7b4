package apikeys

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/billfoldhq/billfold-backend/pkg/config"
	"github.com/billfoldhq/billfold-backend/pkg/db/models"
	"github.com/billfoldhq/billfold-backend/pkg/errors"
	"github.com/billfoldhq/billfold-backend/pkg/logger"
	"github.com/billfoldhq/billfold-backend/pkg/security"
)

const keyPrefixLen = 8

// CreatedKey carries the plaintext exactly once, at creation time.
type CreatedKey struct {
	Key       models.APIKey
	Plaintext string
}

type Service interface {
	Create(ctx context.Context, orgID uuid.UUID, name string) (*CreatedKey, error)
	List(ctx context.Context, orgID uuid.UUID) ([]models.APIKey, error)
	Revoke(ctx context.Context, orgID, id uuid.UUID) error

	// Authenticate resolves a presented plaintext key to its owning org.
	Authenticate(ctx context.Context, plaintext string) (*models.APIKey, error)
}

type service struct {
	repo Repository
	cfg  config.APIKeyConfig
	logg *logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, cfg config.APIKeyConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New(errors.CodeInternal, "api keys repository required")
	}
	if logg == nil {
		return nil, errors.New(errors.CodeInternal, "logger required")
	}
	return &service{repo: repo, cfg: cfg, logg: logg, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, orgID uuid.UUID, name string) (*CreatedKey, error) {
	if orgID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "org id is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New(errors.CodeValidation, "key name is required")
	}

	plaintext, prefix, err := security.GenerateAPIKey()
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "generating api key")
	}
	hash, err := security.HashAPIKey(plaintext, s.cfg)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "hashing api key")
	}

	key := models.APIKey{
		OrgID:  orgID,
		Name:   name,
		Prefix: prefix,
		Hash:   hash,
	}
	if err := s.repo.Create(ctx, &key); err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithOrgID(ctx, orgID.String()), "api key created")
	return &CreatedKey{Key: key, Plaintext: plaintext}, nil
}

func (s *service) List(ctx context.Context, orgID uuid.UUID) ([]models.APIKey, error) {
	if orgID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "org id is required")
	}
	return s.repo.List(ctx, orgID)
}

func (s *service) Revoke(ctx context.Context, orgID, id uuid.UUID) error {
	affected, err := s.repo.Revoke(ctx, orgID, id, s.now())
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.New(errors.CodeNotFound, "api key not found or already revoked")
	}
	s.logg.Info(s.logg.WithOrgID(ctx, orgID.String()), "api key revoked")
	return nil
}

func (s *service) Authenticate(ctx context.Context, plaintext string) (*models.APIKey, error) {
	plaintext = strings.TrimSpace(plaintext)
	if len(plaintext) < keyPrefixLen {
		return nil, errors.New(errors.CodeUnauthorized, "invalid api key")
	}

	key, err := s.repo.GetByPrefix(ctx, plaintext[:keyPrefixLen])
	if err != nil {
		return nil, err
	}
	if key == nil || key.RevokedAt != nil {
		return nil, errors.New(errors.CodeUnauthorized, "invalid api key")
	}

	ok, err := security.VerifyAPIKey(plaintext, key.Hash)
	if err != nil || !ok {
		return nil, errors.New(errors.CodeUnauthorized, "invalid api key")
	}

	// Best effort, a failed touch must not block the request.
	if err := s.repo.TouchLastUsed(ctx, key.ID, s.now()); err != nil {
		s.logg.Warn(ctx, "updating api key last_used_at failed")
	}
	return key, nil
}
