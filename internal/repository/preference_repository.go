package repository

import (
	"github.com/lshigami/quizx/internal/model"
	"github.com/lshigami/quizx/internal/store"
	"github.com/rs/zerolog/log"
)

type PreferenceRepository interface {
	Theme() model.Theme
	SaveTheme(theme model.Theme) error
}

type preferenceRepository struct {
	store store.Store
}

func NewPreferenceRepository(s store.Store) PreferenceRepository {
	return &preferenceRepository{store: s}
}

// Theme defaults to light when nothing valid is stored.
func (r *preferenceRepository) Theme() model.Theme {
	var theme model.Theme
	if !readJSON(r.store, KeyTheme, &theme) {
		return model.ThemeLight
	}
	if !theme.Valid() {
		log.Warn().Str("theme", string(theme)).Msg("Ignoring unknown stored theme")
		return model.ThemeLight
	}
	return theme
}

func (r *preferenceRepository) SaveTheme(theme model.Theme) error {
	return writeJSON(r.store, KeyTheme, theme)
}
