package preferences

import (
	"context"
	"log/slog"

	"github.com/goccy/go-json"
	"github.com/myrjola/chartnote/internal/errors"
	"github.com/myrjola/chartnote/internal/export"
)

const (
	KeyTheme         = "theme"
	KeyStyleExemplar = "nurse-ai-training-text"

	ThemeLight = "light"
	ThemeDark  = "dark"
)

var ErrInvalidTheme = errors.NewSentinel("theme must be light or dark")

// Theme returns the stored theme, light unless dark was chosen.
func (s *Service) Theme(ctx context.Context) (string, error) {
	theme, _, err := s.get(ctx, KeyTheme)
	if err != nil {
		return "", err
	}
	if theme == ThemeDark {
		return ThemeDark, nil
	}
	return ThemeLight, nil
}

func (s *Service) SetTheme(ctx context.Context, theme string) error {
	if theme != ThemeLight && theme != ThemeDark {
		return errors.Wrap(ErrInvalidTheme, theme)
	}
	if err := s.kv.Set(ctx, KeyTheme, theme); err != nil {
		return errors.Wrap(err, "store theme")
	}
	return nil
}

// StyleExemplar returns the writing sample the narrative generator imitates, "" when unset.
func (s *Service) StyleExemplar(ctx context.Context) (string, error) {
	text, _, err := s.get(ctx, KeyStyleExemplar)
	return text, err
}

func (s *Service) SetStyleExemplar(ctx context.Context, text string) error {
	if err := s.kv.Set(ctx, KeyStyleExemplar, text); err != nil {
		return errors.Wrap(err, "store style exemplar")
	}
	return nil
}

// LayoutSettings returns the stored PDF layout merged over the defaults. Unusable stored
// settings are logged and the defaults returned.
func (s *Service) LayoutSettings(ctx context.Context) (export.LayoutSettings, error) {
	raw, _, err := s.get(ctx, export.KeyLayoutSettings)
	if err != nil {
		return export.DefaultLayoutSettings(), err
	}
	settings, err := export.LoadLayoutSettings(raw)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "using default layout settings", errors.SlogError(err))
	}
	return settings, nil
}

// UpdateLayoutSettings merges a partial settings object over the current settings.
func (s *Service) UpdateLayoutSettings(ctx context.Context, patch []byte) (export.LayoutSettings, error) {
	current, err := s.LayoutSettings(ctx)
	if err != nil {
		return current, err
	}
	next, err := export.MergeLayoutSettings(current, patch)
	if err != nil {
		return current, err
	}
	data, err := json.Marshal(next)
	if err != nil {
		return current, errors.Wrap(err, "marshal layout settings")
	}
	if err = s.kv.Set(ctx, export.KeyLayoutSettings, string(data)); err != nil {
		return current, errors.Wrap(err, "store layout settings")
	}
	return next, nil
}
