package session

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shiftboard/hours-import/internal/domain"
)

var ErrNotFound = errors.New("导入会话不存在或已过期")

// Store 保存上传解析后尚未提交的导入会话。
// 实现需要支持并发访问，过期的会话对 Get 和 Take 不可见。
type Store interface {
	Put(ctx context.Context, id string, s *domain.ImportSession) error
	Get(ctx context.Context, id string) (*domain.ImportSession, error)
	// Take 原子地取出并删除会话，同一个 ID 只有一个调用方能拿到
	Take(ctx context.Context, id string) (*domain.ImportSession, error)
	Delete(ctx context.Context, id string) error
	ReclaimExpired(ctx context.Context) (int, error)
}

// NewSessionID 生成不可猜测的会话 ID
func NewSessionID() string {
	return uuid.NewString()
}
