package prompt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProblemEmbedsInputs(t *testing.T) {
	p := Problem("funciones", "basico", "Suma dos números")

	assert.Contains(t, p, `tema "funciones"`)
	assert.Contains(t, p, `nivel "basico"`)
	assert.Contains(t, p, "Suma dos números")
	assert.Contains(t, p, `"exampleOutput"`)
	assert.Contains(t, p, `"explanation"`)
}

func TestProblemWithoutExerciseText(t *testing.T) {
	p := Problem("estructuras", "avanzado", "  ")

	assert.NotContains(t, p, "enunciado")
	assert.Contains(t, p, `"solution"`)
}

func TestProblemIsDeterministic(t *testing.T) {
	assert.Equal(t, Problem("a", "b", "c"), Problem("a", "b", "c"))
}

func TestListingTemplates(t *testing.T) {
	seen := map[string]bool{}
	for _, topic := range []string{"procedimientos", "Funciones", " estructuras "} {
		p, err := Listing(topic)
		require.NoError(t, err, topic)
		assert.Contains(t, p, `"basico"`)
		assert.Contains(t, p, `"intermedio"`)
		assert.Contains(t, p, `"avanzado"`)
		seen[p] = true
	}
	assert.Len(t, seen, 3, "each category has its own template")
}

func TestListingUnrecognizedTopic(t *testing.T) {
	_, err := Listing("bases de datos")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnrecognizedTopic))
}

func TestValidationPrompt(t *testing.T) {
	p := Validation("Suma", "return a+b;", "return a + b;")

	assert.Contains(t, p, "Suma")
	assert.Contains(t, p, "return a+b;")
	assert.Contains(t, p, "return a + b;")
	assert.Contains(t, p, `"isCorrect"`)
}

func TestNormalizeCode(t *testing.T) {
	cases := map[string]string{
		"  int x = 1;\n\n\treturn x;  ": "int x = 1; return x;",
		"a\r\nb":                        "a b",
		"":                              "",
		"   \n\t ":                      "",
		"sin cambios":                   "sin cambios",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeCode(in), "input %q", in)
	}
}
