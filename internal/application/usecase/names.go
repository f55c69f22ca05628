package usecase

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/bodegas-api/internal/domain"
)

// normalizeName recorta espacios y normaliza a NFC. Un nombre vacío es inválido.
func normalizeName(s string) (string, error) {
	n := norm.NFC.String(strings.TrimSpace(s))
	if n == "" {
		return "", domain.ErrInvalidInput
	}
	return n, nil
}
