package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument cubre toda violación de precondiciones: tamaños de muestra
// no positivos, conjuntos de perfiles vacíos, spreads negativos y parámetros
// financieros fuera de rango. Se detecta antes de empezar cualquier cálculo.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrNoIRR se devuelve cuando los cashflows no tienen una TIR definida
// (sin cambio de signo o raíz fuera del intervalo de búsqueda).
var ErrNoIRR = errors.New("irr not defined")

// invalidf envuelve ErrInvalidArgument con el detalle del fallo.
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
