package payroll

import "errors"

var (
	ErrNotConfirmed     = errors.New("operation requires operator confirmation")
	ErrNothingToSave    = errors.New("no employees visible under the current filter")
	ErrOrphanRecord     = errors.New("payroll record references an unknown employee")
	ErrUnknownPolicy    = errors.New("unknown policy")
	ErrEmployeeNotFound = errors.New("employee not found")
)
