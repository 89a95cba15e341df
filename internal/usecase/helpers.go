package usecase

import (
	"errors"

	"github.com/iho/saccopay/internal/domain"
)

// ErrCacheMiss is returned by Cache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

func isPersistence(err error) bool {
	return errors.Is(err, domain.ErrPersistence)
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
