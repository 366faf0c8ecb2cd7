package textnorm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger/pkg/textnorm"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "paracetamol jarabe pediatrico", textnorm.Fold("  Paracetamol  Jarabe Pediátrico "))
	assert.Equal(t, "ibuprofeno", textnorm.Fold("IBUPROFENO"))
	assert.Equal(t, "cafe nino", textnorm.Fold("Café Niño"))
	assert.Equal(t, "", textnorm.Fold("   "))
}
