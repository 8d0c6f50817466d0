// Package preferences keeps the workstation settings: the access code, the theme, the style
// exemplar and the PDF layout.
package preferences

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/myrjola/chartnote/internal/errors"
	"github.com/myrjola/chartnote/internal/repositories"
	"golang.org/x/crypto/bcrypt"
)

const (
	KeyAccessCode = "APP_ACCESS_CODE"

	minCodeLength = 4
	// bcrypt ignores input beyond 72 bytes.
	maxCodeBytes = 72
)

var (
	ErrWrongAccessCode = errors.NewSentinel("access code is incorrect")
	ErrCodeTooShort    = errors.NewSentinel("new access code must contain at least 4 characters")
	ErrCodeTooLong     = errors.NewSentinel("new access code is too long")
)

// KeyValueStore is the persistence of the preferences. Get returns an error wrapping
// repositories.ErrNotFound for absent keys.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type Service struct {
	kv          KeyValueStore
	logger      *slog.Logger
	defaultCode string
	cost        int
}

// NewService returns preferences backed by kv. defaultCode is the access code used until the
// user changes it.
func NewService(kv KeyValueStore, defaultCode string, logger *slog.Logger) *Service {
	return &Service{
		kv:          kv,
		logger:      logger.With(slog.String("source", "preferences.Service")),
		defaultCode: defaultCode,
		cost:        bcrypt.DefaultCost,
	}
}

func (s *Service) get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.kv.Get(ctx, key)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "read preference", slog.String("key", key))
	}
	return value, true, nil
}

func isBcryptHash(stored string) bool {
	return strings.HasPrefix(stored, "$2")
}

// storedCode returns the persisted hash, bootstrapping it from the default code.
func (s *Service) storedCode(ctx context.Context) (string, error) {
	stored, found, err := s.get(ctx, KeyAccessCode)
	if err != nil {
		return "", err
	}
	if found && stored != "" {
		return stored, nil
	}
	hash, err := s.hash(s.defaultCode)
	if err != nil {
		return "", err
	}
	if err = s.kv.Set(ctx, KeyAccessCode, hash); err != nil {
		return "", errors.Wrap(err, "store default access code")
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "access code initialised from default")
	return hash, nil
}

func (s *Service) hash(code string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(code), s.cost)
	if err != nil {
		return "", errors.Wrap(err, "hash access code")
	}
	return string(hashed), nil
}

// Verify reports whether code matches the access code. A code stored in clear text by an older
// version is accepted once and replaced by its hash.
func (s *Service) Verify(ctx context.Context, code string) (bool, error) {
	stored, err := s.storedCode(ctx)
	if err != nil {
		return false, err
	}
	if !isBcryptHash(stored) {
		if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
			return false, nil
		}
		hash, err := s.hash(code)
		if err != nil {
			return false, err
		}
		if err = s.kv.Set(ctx, KeyAccessCode, hash); err != nil {
			return false, errors.Wrap(err, "upgrade access code")
		}
		return true, nil
	}
	err = bcrypt.CompareHashAndPassword([]byte(stored), []byte(code))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "compare access code")
	}
	return true, nil
}

// Change replaces the access code. The current code must match and the new one must contain at
// least 4 characters.
func (s *Service) Change(ctx context.Context, current, next string) error {
	ok, err := s.Verify(ctx, current)
	if err != nil {
		return err
	}
	if !ok {
		return ErrWrongAccessCode
	}
	if utf8.RuneCountInString(next) < minCodeLength {
		return ErrCodeTooShort
	}
	if len(next) > maxCodeBytes {
		return ErrCodeTooLong
	}
	hash, err := s.hash(next)
	if err != nil {
		return err
	}
	if err = s.kv.Set(ctx, KeyAccessCode, hash); err != nil {
		return errors.Wrap(err, "store access code")
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "access code changed")
	return nil
}
