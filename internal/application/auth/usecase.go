package auth

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/jwt"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
	"github.com/jhoicas/inventario-ledger/pkg/validator"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// Auditor registra intentos de login y altas de usuario.
type Auditor interface {
	Record(ctx context.Context, entry entity.AuditEntry)
}

// UseCase casos de uso de autenticación: login, alta y listado de usuarios.
type UseCase struct {
	runner  repository.Runner
	jwtCfg  JWTConfig
	auditor Auditor
	log     *logger.Logger
	cost    int
}

// NewUseCase construye el caso de uso de auth. auditor puede ser nil.
func NewUseCase(runner repository.Runner, jwtCfg JWTConfig, auditor Auditor, log *logger.Logger) *UseCase {
	return &UseCase{runner: runner, jwtCfg: jwtCfg, auditor: auditor, log: log.Named("auth"), cost: bcrypt.DefaultCost}
}

// RegisterUser crea un usuario: hashea password con bcrypt y persiste.
// Devuelve ErrEmailAlreadyExists si el email ya está registrado. Rol por defecto: viewer.
func (uc *UseCase) RegisterUser(ctx context.Context, in dto.RegisterUserRequest, actor string) (*dto.UserResponse, error) {
	if e := validator.FirstError(in); e != nil {
		return nil, domain.NewValidationError(e.FailedField, e.Message())
	}
	role := in.Role
	if role == "" {
		role = entity.RoleViewer
	}
	user, err := uc.create(ctx, in.Email, in.Password, in.Name, role)
	uc.record(ctx, entity.ActionUserRegister, strings.ToLower(in.Email), actor, err)
	if err != nil {
		return nil, err
	}
	resp := dto.ToUserResponse(user)
	return &resp, nil
}

// Login verifica email/password, genera JWT y retorna token + usuario.
// Email desconocido y password incorrecto responden igual (ErrUnauthorized).
func (uc *UseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	if e := validator.FirstError(in); e != nil {
		return nil, domain.NewValidationError(e.FailedField, e.Message())
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	var user *entity.User
	err := uc.runner.Run(ctx, func(r repository.Repositories) error {
		var err error
		user, err = r.Users.FindByEmail(ctx, email)
		return err
	})
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		err = domain.ErrUnauthorized
	case err != nil:
		return nil, err
	case bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil:
		err = domain.ErrUnauthorized
	case user.Status != "active":
		err = domain.ErrForbidden
	}
	uc.record(ctx, entity.ActionAuthLogin, email, email, err)
	if err != nil {
		return nil, err
	}

	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Email, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:     token,
		ExpiresIn: uc.jwtCfg.ExpMinutes * 60,
		User:      dto.ToUserResponse(user),
	}, nil
}

// ListUsers usuarios ordenados por email.
func (uc *UseCase) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	var users []*entity.User
	err := uc.runner.Run(ctx, func(r repository.Repositories) error {
		var err error
		users, err = r.Users.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(users, func(a, b *entity.User) int { return cmp.Compare(a.Email, b.Email) })
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, dto.ToUserResponse(u))
	}
	return out, nil
}

// EnsureAdmin crea el administrador inicial si email no está registrado.
// Con email vacío no hace nada. created=false si ya existía.
func (uc *UseCase) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	if strings.TrimSpace(email) == "" {
		return false, nil
	}
	if password == "" {
		return false, domain.NewValidationError("ADMIN_PASSWORD", "es obligatorio junto con ADMIN_EMAIL")
	}
	_, err := uc.create(ctx, email, password, "Administrador", entity.RoleAdmin)
	if errors.Is(err, domain.ErrEmailAlreadyExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	uc.log.Info().Str("email", strings.ToLower(email)).Msg("administrador inicial creado")
	return true, nil
}

func (uc *UseCase) create(ctx context.Context, email, password, name, role string) (*entity.User, error) {
	if !entity.ValidRole(role) {
		return nil, domain.NewValidationError("role", "rol desconocido")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), uc.cost)
	if err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		name = email
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
		Status:       "active",
		CreatedAt:    entity.TruncateTimestamp(time.Now()),
	}
	err = uc.runner.Run(ctx, func(r repository.Repositories) error {
		return r.Users.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (uc *UseCase) record(ctx context.Context, action, resourceID, actor string, err error) {
	if uc.auditor == nil {
		return
	}
	entry := entity.AuditEntry{
		Action:     action,
		Resource:   "user",
		ResourceID: resourceID,
		Actor:      actor,
		Outcome:    entity.AuditSuccess,
	}
	if err != nil {
		entry.Outcome = entity.AuditFailure
		entry.Metadata = map[string]string{"error": err.Error()}
	}
	uc.auditor.Record(ctx, entry)
}
