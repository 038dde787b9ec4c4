package shifts

import "errors"

// ErrInternal возвращается при ошибке чтения расписания
var ErrInternal = errors.New("shifts: internal error")
