package auth

import (
	"context"
	"errors"
	"time"

	"app/internal/crypto"
	"app/internal/domain/model"
	"app/internal/repository"
)

// セッション一覧の1行。トークンやそのハッシュは絶対に含めない
type SessionView struct {
	ID         string    `json:"id"`
	DeviceName string    `json:"deviceName"`
	IP         string    `json:"ip"`
	UserAgent  string    `json:"userAgent"`
	Current    bool      `json:"current"`
	CreatedAt  time.Time `json:"createdAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// ListSessions は自分の有効セッション一覧を返す。
// currentRawTokenは「今使っている端末」に印を付けるためだけに使う
func (u *AuthUsecase) ListSessions(ctx context.Context, userID string, currentRawToken string) ([]SessionView, error) {
	sessions, err := u.sessions.ListActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	currentHash := ""
	if currentRawToken != "" {
		currentHash = crypto.HashToken(currentRawToken)
	}

	now := u.clock.Now()
	views := make([]SessionView, 0, len(sessions))
	for _, s := range sessions {
		if s.Expired(now) {
			continue
		}
		views = append(views, SessionView{
			ID:         s.ID,
			DeviceName: s.DeviceName,
			IP:         s.IP,
			UserAgent:  s.UserAgent,
			Current:    currentHash != "" && s.RefreshTokenHash == currentHash,
			CreatedAt:  s.CreatedAt,
			ExpiresAt:  s.ExpiresAt,
		})
	}
	return views, nil
}

// RevokeSession は自分のセッションを1つ失効させる（別端末の強制ログアウト）。
// 他人のセッションIDは「存在しない」のと同じ応答にする
func (u *AuthUsecase) RevokeSession(ctx context.Context, userID string, sessionID string, meta SessionMeta) error {
	session, err := u.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return ErrInvalidSession
		}
		return err
	}
	if session.UserID != userID {
		return ErrInvalidSession
	}

	if session.IsAttempt() {
		return u.sessions.DeleteByID(ctx, session.ID)
	}

	if err := u.tombstone(ctx, userID, session.RefreshTokenHash, session.ExpiresAt); err != nil {
		return err
	}
	// 失効済みをもう一度失効させても成功扱い（冪等）
	if err := u.sessions.Revoke(ctx, session.ID); err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
		return err
	}

	u.recordAudit(ctx, userID, model.AuditActionSessionRevoked, meta)
	return nil
}
