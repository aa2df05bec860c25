package repository

import (
	"context"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// MovementRepository define el puerto del kardex. Solo se agregan registros:
// no hay Update ni Delete.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	// List devuelve los movimientos más recientes primero. limit <= 0 no limita.
	List(ctx context.Context, filter entity.MovementFilter, limit int) ([]entity.Movement, error)
}
