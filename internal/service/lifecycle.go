package service

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
)

func appendCloseHook(lc fx.Lifecycle, component string, closeFn func() error) {
	if lc == nil {
		return
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			log.Info().Str("component", component).Msg("Closing")
			return closeFn()
		},
	})
}
