package ports

import (
	"context"

	"github.com/alejandrodnm/polyhedge/internal/domain"
)

// Storage persiste los análisis ejecutados.
type Storage interface {
	// SaveAnalysis guarda el resumen del análisis y sus trades.
	SaveAnalysis(ctx context.Context, report domain.Report) error

	// GetHistory devuelve los últimos análisis, más recientes primero.
	// Si user está vacío devuelve los de todos los usuarios.
	GetHistory(ctx context.Context, user string, limit int) ([]domain.AnalysisRecord, error)

	// GetAnalysis devuelve un análisis guardado junto con sus trades ordenados.
	GetAnalysis(ctx context.Context, id string) (domain.AnalysisRecord, []domain.Trade, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
