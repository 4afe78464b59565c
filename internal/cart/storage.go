package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/hiho-nelson/go-shopify-storefront/internal/shopify"
)

// Shell is the only cart state that survives a restart: the remote
// identifier plus the last confirmed total and the sidebar flag. Line
// contents are excluded: the identifier is a cache key, never a cache
// value, and contents are re-fetched on load.
type Shell struct {
	Cart   *ShellCart `json:"cart"`
	IsOpen bool       `json:"isOpen"`
}

type ShellCart struct {
	ID   string           `json:"id"`
	Cost shopify.CartCost `json:"cost"`
}

var ErrShellNotFound = errors.New("cart shell not found")

type Storage interface {
	Load(ctx context.Context) (*Shell, error)
	Save(ctx context.Context, shell *Shell) error
	Clear(ctx context.Context) error
}

// MemoryStorage keeps the shell in process. Used in tests and when no
// redis address is configured.
type MemoryStorage struct {
	m     sync.RWMutex
	shell *Shell
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Load(context.Context) (*Shell, error) {
	s.m.RLock()
	defer s.m.RUnlock()
	if s.shell == nil {
		return nil, ErrShellNotFound
	}
	cp := *s.shell
	if s.shell.Cart != nil {
		cart := *s.shell.Cart
		cp.Cart = &cart
	}
	return &cp, nil
}

func (s *MemoryStorage) Save(_ context.Context, shell *Shell) error {
	s.m.Lock()
	defer s.m.Unlock()
	cp := *shell
	if shell.Cart != nil {
		cart := *shell.Cart
		cp.Cart = &cart
	}
	s.shell = &cp
	return nil
}

func (s *MemoryStorage) Clear(context.Context) error {
	s.m.Lock()
	defer s.m.Unlock()
	s.shell = nil
	return nil
}
