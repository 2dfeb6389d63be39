package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateProposta invalidates every cache entry touching one proposta.
// Called after any state transition, update or delete.
func InvalidateProposta(ctx context.Context, cm *CacheManager, propostaID, empresaID uint) {
	SafeDelete(ctx, cm.Proposta, fmt.Sprintf("id:%d", propostaID))
	SafeInvalidatePattern(ctx, cm.Proposta, "list:*")
	SafeInvalidatePattern(ctx, cm.Proposta, "ativas*")
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("empresa:%d*", empresaID))
}

// InvalidateEmpresa invalidates the empresa summary cache.
func InvalidateEmpresa(ctx context.Context, cm *CacheManager, empresaID uint) {
	SafeDelete(ctx, cm.Empresa, fmt.Sprintf("id:%d", empresaID))
}

// InvalidateScope invalidates a gestor's cached department scope.
func InvalidateScope(ctx context.Context, cm *CacheManager, gestorID uint) {
	SafeDelete(ctx, cm.Scope, fmt.Sprintf("gestor:%d", gestorID))
}
