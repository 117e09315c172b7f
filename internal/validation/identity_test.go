package validation_test

import (
	"strings"
	"testing"

	"github.com/dropDatabas3/portero/internal/validation"
	"github.com/stretchr/testify/assert"
)

func TestValidEmail(t *testing.T) {
	for _, ok := range []string{"a@b.co", "persona+tag@example.com", "con.punto@sub.dominio.org"} {
		assert.True(t, validation.ValidEmail(ok), ok)
	}
	tooLong := strings.Repeat("a", 95) + "@b.com"
	for _, bad := range []string{"", "sin-arroba", "@dominio.com", "a@b", "a b@c.com", tooLong} {
		assert.False(t, validation.ValidEmail(bad), bad)
	}
}

func TestValidUsername(t *testing.T) {
	for _, ok := range []string{"ana", "user_name", "con.punto", "con-guion", "Abc123"} {
		assert.True(t, validation.ValidUsername(ok), ok)
	}
	for _, bad := range []string{"", "ab", "con espacio", "eñe", strings.Repeat("x", 51)} {
		assert.False(t, validation.ValidUsername(bad), bad)
	}
}
