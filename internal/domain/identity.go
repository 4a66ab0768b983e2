package domain

// Identity es el resultado de verificar una asercion del proveedor de identidad.
type Identity struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}
