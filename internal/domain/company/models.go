package company

import (
	"time"

	"sawa/internal/domain/payroll"
)

// DefaultLeaveDays is the annual leave balance granted to a new employee.
const DefaultLeaveDays = 21

type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type Employee struct {
	ID       string `json:"id"`
	TenantID string `json:"tenantId"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Position string `json:"position"`

	// Phone is the decrypted number, populated on read when a ciphertext
	// exists. Only the ciphertext and its digest are stored.
	Phone       string `json:"phone,omitempty"`
	PhoneDigest string `json:"-"`

	Salary       payroll.SalaryStructure `json:"salary"`
	LeaveBalance int                     `json:"leaveBalanceDays"`
	CreatedAt    time.Time               `json:"createdAt"`
}
