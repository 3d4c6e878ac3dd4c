package company

import "errors"

var (
	ErrCompanyExists    = errors.New("a company with this name is already registered")
	ErrCompanyNotFound  = errors.New("company not found")
	ErrEmployeeExists   = errors.New("an employee with this name already exists")
	ErrEmployeeNotFound = errors.New("employee not found")
)
