package dataset

import "errors"

// NoDataError is returned when an input produced zero records.
type NoDataError struct {
	Source string
}

func (e *NoDataError) Error() string {
	return "Não foram encontrados dados no arquivo."
}

// ErrNotProfiled is returned when rows are normalized before every column has a type.
var ErrNotProfiled = errors.New("columns must be profiled before rows are normalized")

// ErrSealed is returned when records are added after profiling started.
var ErrSealed = errors.New("builder no longer accepts records")
