package repository

import (
	"encoding/json"
	"errors"

	"github.com/lshigami/quizx/internal/store"
	"github.com/rs/zerolog/log"
)

// Local store keys, scoped per client namespace.
const (
	KeyUser          = "omni_quiz_user"
	KeyProfilePrefix = "omni_quiz_profile:"
	KeyTheme         = "omni_quiz_theme"
	KeyHistory       = "omni_quiz_history"
)

// readJSON decodes key into v. It reports false when the key is absent,
// unreadable or malformed; those cases are logged and never returned as errors.
func readJSON(s store.Store, key string, v any) bool {
	data, err := s.Get(key)
	if errors.Is(err, store.ErrNotFound) {
		return false
	}
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to read from local store")
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Discarding malformed local store payload")
		return false
	}
	return true
}

func writeJSON(s store.Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(key, data)
}
