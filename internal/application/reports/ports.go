package reports

import (
	"context"

	"github.com/jhoicas/bodegas-api/internal/application/dto"
)

// Cache caché versionada de informes. Una implementación nil-safe sin cliente actúa como passthrough.
type Cache interface {
	BuildKey(ctx context.Context, parts ...string) (string, error)
	FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error
}

// MovementPDFGenerator genera la representación PDF del informe de movimientos.
type MovementPDFGenerator interface {
	GenerateMovementReportPDF(ctx context.Context, report *dto.MovementReportDTO) ([]byte, error)
}
