package ports

import (
	"context"

	"github.com/alejandrodnm/offtake/internal/domain"
)

// MarketDataset obtiene los registros históricos del mercado CfD.
type MarketDataset interface {
	// Load devuelve todos los registros dentro de la ventana configurada.
	Load(ctx context.Context) ([]domain.MarketRecord, error)
}
