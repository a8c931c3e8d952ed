package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// Borra la clave solo si sigue siendo nuestra (el token coincide).
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Extiende el TTL solo si la clave sigue siendo nuestra.
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)

// NewRedisClient crea el cliente go-redis y valida la conexión.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping Redis: %w", err)
	}
	return rdb, nil
}

// RedisLocker lock distribuido con SET NX PX y liberación por token.
// Mientras el lock está tomado se renueva cada ttl/3, así una sección crítica larga
// no pierde la exclusión. El TTL solo acota cuánto queda tomada una clave si el
// proceso muere con el lock.
type RedisLocker struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	retry  time.Duration
	log    *logger.Logger
}

// NewRedisLocker construye el locker. ttl y retry en cero toman 5s y 25ms.
func NewRedisLocker(rdb *redis.Client, ttl, retry time.Duration, log *logger.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	if retry <= 0 {
		retry = 25 * time.Millisecond
	}
	return &RedisLocker{rdb: rdb, prefix: "inventario-ledger:lock:", ttl: ttl, retry: retry, log: log}
}

// Lock reintenta cada retry hasta obtener la clave o hasta que ctx termine.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	k := l.prefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()
	for {
		ok, err := l.rdb.SetNX(ctx, k, token, l.ttl).Result()
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			return nil, &domain.StorageError{Op: "lock", Err: err}
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, &domain.StorageError{Op: "lock", Err: ctx.Err()}
		case <-ticker.C:
		}
	}

	stop := make(chan struct{})
	renewed := make(chan struct{})
	go l.keepAlive(k, key, token, stop, renewed)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-renewed
			// contexto propio: el del request puede estar cancelado al liberar
			rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := releaseScript.Run(rctx, l.rdb, []string{k}, token).Err(); err != nil {
				l.log.Warn().Err(err).Str("key", key).Msg("no se pudo liberar el lock en Redis; expira por TTL")
			}
		})
	}, nil
}

// keepAlive renueva la clave hasta que stop se cierre o la clave deje de ser nuestra.
func (l *RedisLocker) keepAlive(k, key, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(l.ttl / 3)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		rctx, cancel := context.WithTimeout(context.Background(), l.ttl/3)
		n, err := renewScript.Run(rctx, l.rdb, []string{k}, token, l.ttl.Milliseconds()).Int()
		cancel()
		if err != nil {
			// se reintenta en el próximo tick; la clave aún tiene al menos 2/3 del TTL
			l.log.Warn().Err(err).Str("key", key).Msg("no se pudo renovar el lock en Redis")
			continue
		}
		if n == 0 {
			l.log.Error().Str("key", key).Msg("lock en Redis perdido antes de liberarlo")
			return
		}
	}
}
