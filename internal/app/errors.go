package app

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidCredentials cubre identificador desconocido, password
	// incorrecta y cuenta inactiva. Indistinguibles a propósito.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrDuplicateIdentifier: colisión de username o email en el registro.
	ErrDuplicateIdentifier = errors.New("duplicate_identifier")
)

// WeakPasswordError lleva las violaciones de policy. Estas razones SÍ pueden
// mostrarse al usuario: hablan de su propio input todavía no persistido.
type WeakPasswordError struct {
	Reasons []string
}

func (e *WeakPasswordError) Error() string {
	return "weak_password: " + strings.Join(e.Reasons, ",")
}

// IsWeakPassword extrae el detalle si err es una violación de policy.
func IsWeakPassword(err error) (*WeakPasswordError, bool) {
	var w *WeakPasswordError
	if errors.As(err, &w) {
		return w, true
	}
	return nil, false
}
