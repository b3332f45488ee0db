package analysis

import "fmt"

// AnalysisError - ошибка анализа
type AnalysisError struct {
	Message string
}

func (e *AnalysisError) Error() string {
	return e.Message
}

// Таксономия ошибок ядра анализа
var (
	// ErrEmptyInput: нет входных данных там, где они обязательны
	ErrEmptyInput = &AnalysisError{Message: "empty input"}
	// ErrInvalidInput: нечисловые или не конечные значения во входе
	ErrInvalidInput = &AnalysisError{Message: "invalid input"}
	// ErrPrecondition: нарушено предусловие (например, currentPrice <= 0)
	ErrPrecondition = &AnalysisError{Message: "precondition violation"}
)

// WithContext добавляет контекст к ошибке
func (e *AnalysisError) WithContext(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), e)
}
