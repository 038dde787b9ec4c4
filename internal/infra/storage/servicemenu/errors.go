package servicemenu

import "errors"

var (
	// ErrMenuNotFound возвращается, когда меню услуги не найдено
	ErrMenuNotFound = errors.New("servicemenu.repository: service menu not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("servicemenu.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("servicemenu.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("servicemenu.repository: failed to scan row")
)
