package ports

import (
	"context"

	"github.com/alejandrodnm/offtake/internal/domain"
)

// SweepStore persiste los barridos de convergencia ejecutados.
type SweepStore interface {
	// SaveSweep guarda el barrido completo: perfiles, semilla y conteos por paso.
	SaveSweep(ctx context.Context, sweep domain.Sweep) error

	// GetSweep devuelve un barrido por ID. storage.ErrNotFound si no existe.
	GetSweep(ctx context.Context, id string) (domain.Sweep, error)

	// ListSweeps devuelve los resúmenes más recientes primero.
	ListSweeps(ctx context.Context, limit int) ([]domain.SweepSummary, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
