package availability

import "errors"

// ErrInvalidGrid возвращается при некорректных границах или шаге сетки
var ErrInvalidGrid = errors.New("availability: invalid slot grid")
