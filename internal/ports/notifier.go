package ports

import (
	"context"

	"github.com/alejandrodnm/offtake/internal/domain"
)

// Notifier presenta los resultados de un barrido al usuario.
type Notifier interface {
	// NotifySweep muestra la tendencia de convergencia del barrido.
	// En la implementación de consola, imprime una tabla formateada.
	NotifySweep(ctx context.Context, sweep domain.Sweep) error
}
