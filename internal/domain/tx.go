package domain

import "context"

// TxManager ejecuta fn dentro de una unidad de trabajo atómica.
// El contexto recibido por fn transporta la transacción; los repositorios la toman de ahí.
// No soporta anidamiento: llamar RunInTx dentro de fn abre otra transacción.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
