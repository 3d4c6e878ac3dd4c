package payroll

import "errors"

var (
	ErrNegativeComponent = errors.New("salary component must not be negative")
	ErrInvalidPeriod     = errors.New("period days must be positive")
	ErrWorkedExceedsDays = errors.New("worked days exceed period days")
	ErrEmptyBrackets     = errors.New("tax bracket table is empty")
	ErrUnsortedBrackets  = errors.New("tax brackets not sorted ascending by upper bound")
	ErrInvalidRate       = errors.New("statutory rate out of range")
)
