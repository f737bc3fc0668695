package repository

import (
	"app/internal/domain/model"
	"context"
)

// 監査ログの追記。読み出しは管理ツール側の仕事
type AuditLogRepository interface {
	Create(ctx context.Context, log *model.AuditLog) error
}
