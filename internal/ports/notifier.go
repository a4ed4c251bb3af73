package ports

import (
	"context"

	"github.com/alejandrodnm/polyhedge/internal/domain"
)

// Notifier presenta el análisis al usuario.
type Notifier interface {
	// Notify renderiza el reporte completo.
	// En la implementación de consola, imprime secciones y tablas de texto.
	Notify(ctx context.Context, report domain.Report) error
}
