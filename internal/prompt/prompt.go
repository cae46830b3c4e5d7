// Package prompt renders the instructions sent to the text-generation endpoint.
// Every template pins the JSON shape the reply must follow.
package prompt

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Topic categories with a dedicated listing template.
const (
	CategoryProcedimientos = "procedimientos"
	CategoryFunciones      = "funciones"
	CategoryEstructuras    = "estructuras"
)

// ErrUnrecognizedTopic is returned when no listing template matches a topic.
var ErrUnrecognizedTopic = errors.New("unrecognized topic")

const problemShape = `{
        "title": "Título del problema",
        "description": "Descripción detallada",
        "exampleInput": "Ejemplo de entrada",
        "exampleOutput": "Ejemplo de salida",
        "solution": {
            "language": "Lenguaje Java",
            "code": "Código solución",
            "explanation": "Explicación breve"
        }
    }`

const listingShape = `{
        "basico": ["10 enunciados breves"],
        "intermedio": ["10 enunciados breves"],
        "avanzado": ["10 enunciados breves"]
    }`

// Problem builds the prompt that asks for one full exercise. When exerciseText
// is empty the exercise is described by topic and level alone; exercise.Service
// always supplies a statement, so that wording only serves other callers.
func Problem(topic, level, exerciseText string) string {
	if strings.TrimSpace(exerciseText) == "" {
		return fmt.Sprintf(`
    Genera un problema de codificación en formato JSON con el tema "%s" y nivel "%s". Formato esperado:
    %s
    `, topic, level, problemShape)
	}
	return fmt.Sprintf(`
    Genera un problema de codificación en formato JSON con el tema "%s" y nivel "%s".
    El problema debe desarrollar el siguiente enunciado:
    "%s"

    Formato esperado:
    %s
    `, topic, level, exerciseText, problemShape)
}

var listingTemplates = map[string]string{
	CategoryProcedimientos: `
    Eres un docente de programación. Propón enunciados de ejercicios sobre procedimientos
    (subrutinas sin valor de retorno, paso de parámetros por valor y por referencia,
    efectos sobre variables externas y salida por pantalla).
    Agrupa 10 enunciados por cada nivel de dificultad.

    Devuelve únicamente un JSON con el formato:
    %s
    `,
	CategoryFunciones: `
    Eres un docente de programación. Propón enunciados de ejercicios sobre funciones
    (parámetros, valores de retorno, recursividad, composición de funciones y
    funciones de orden superior).
    Agrupa 10 enunciados por cada nivel de dificultad.

    Devuelve únicamente un JSON con el formato:
    %s
    `,
	CategoryEstructuras: `
    Eres un docente de programación. Propón enunciados de ejercicios sobre estructuras
    de datos (arreglos, matrices, listas enlazadas, pilas, colas y mapas), incluyendo
    recorridos, búsquedas y ordenamientos.
    Agrupa 10 enunciados por cada nivel de dificultad.

    Devuelve únicamente un JSON con el formato:
    %s
    `,
}

// Listing builds the prompt for a tiered listing of candidate exercises.
func Listing(topic string) (string, error) {
	tmpl, ok := listingTemplates[Category(topic)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnrecognizedTopic, topic)
	}
	return fmt.Sprintf(tmpl, listingShape), nil
}

// Category normalizes a topic into its template key.
func Category(topic string) string {
	return strings.ToLower(strings.TrimSpace(topic))
}

// Validation builds the judgment prompt. Both code arguments are expected to
// be normalized already.
func Validation(problemDescription, userCode, expectedSolution string) string {
	return fmt.Sprintf(`
    Eres un evaluador de código. Evalúa si el siguiente código del usuario resuelve correctamente el problema planteado.

    Problema:
    %s

    Código del Usuario:
    %s

    Solución Esperada:
    %s

    Compararás la salida del código del usuario con la salida esperada para los mismos datos de entrada. 
    Si hay diferencias lógicas, explica cuál es el error y proporciona sugerencias de mejora.

    Devuelve un JSON con el formato:
    {
        "isCorrect": true/false,
        "feedback": "Texto explicando si la solución es correcta o no."
    }
  `, problemDescription, userCode, expectedSolution)
}

var whitespace = regexp.MustCompile(`\s+`)

// NormalizeCode collapses every whitespace run into a single space and trims the ends.
func NormalizeCode(code string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(code, " "))
}
