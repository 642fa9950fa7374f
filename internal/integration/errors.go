package integration

import (
	"errors"
	"fmt"
)

// ErrNotFound оборачивается в TransportError при ответе 404. Удалённый API
// отвечает 404 и на отфильтрованный листинг без совпадений.
var ErrNotFound = errors.New("not found")

// TransportError - сетевая ошибка, таймаут или ответ не 2xx.
type TransportError struct {
	URL        string
	StatusCode int // 0, если ответ не получен
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport error: GET %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transport error: GET %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError - тело ответа не совпадает с ожидаемой структурой.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error: GET %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
