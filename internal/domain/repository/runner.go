package repository

import "context"

// Repositories repositorios atados a una misma sesión del ledger.
type Repositories struct {
	Products     ProductRepository
	Transactions TransactionRepository
	Users        UserRepository
	Audit        AuditRepository
}

// Runner abre una sesión del ledger, ejecuta fn con los repositorios y la libera al terminar.
type Runner interface {
	Run(ctx context.Context, fn func(Repositories) error) error
}
