package repository

import "errors"

// ErrNotFound indica que la fila buscada no existe (o esta dada de baja).
var ErrNotFound = errors.New("not found")
