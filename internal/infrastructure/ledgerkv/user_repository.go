package ledgerkv

import (
	"context"
	"errors"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

var _ repository.UserRepository = (*UserRepository)(nil)

// UserRepository usuarios bajo user:<email en minúsculas>.
type UserRepository struct {
	s   repository.LedgerSession
	log *logger.Logger
}

func NewUserRepository(s repository.LedgerSession, log *logger.Logger) *UserRepository {
	return &UserRepository{s: s, log: log}
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	key := userKey(user.Email)
	_, err := r.s.Get(ctx, key)
	if err == nil {
		return domain.ErrEmailAlreadyExists
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.WrapStorage("get", err)
	}
	value, err := encodeUser(user)
	if err != nil {
		return &domain.StorageError{Op: "encode", Err: err}
	}
	_, err = r.s.Put(ctx, key, value)
	return domain.WrapStorage("put", err)
}

// FindByEmail devuelve domain.ErrUserNotFound si no existe.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	e, err := getVerified(ctx, r.s, userKey(email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	u, err := decodeUser(e.Value)
	if err != nil {
		return nil, &domain.StorageError{Op: "decode", Err: err}
	}
	return u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	users, _, err := scanDecode(ctx, r.s, r.log, userPrefix, decodeUser)
	return users, err
}
