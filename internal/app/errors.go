package app

import "errors"

// IngestFailureMessage is shown to users whenever a file cannot be ingested.
const IngestFailureMessage = "Falha ao processar arquivo. Certifique-se de que é um Excel ou CSV válido com os cabeçalhos corretos."

// ErrNoDataset indicates that nothing has been ingested yet.
var ErrNoDataset = errors.New("no dataset loaded")

// ErrUnknownColumn indicates a grid query on a column the dataset lacks.
var ErrUnknownColumn = errors.New("unknown column")

// IngestError wraps any parse or build failure. Its message is always the
// fixed user-facing text; the cause is available through errors.Unwrap.
type IngestError struct {
	File string
	Err  error
}

func (e *IngestError) Error() string { return IngestFailureMessage }

func (e *IngestError) Unwrap() error { return e.Err }
