package domain

import "time"

const (
	AttendanceDateLayout = "2006-01-02"
	AttendanceTimeLayout = "15:04:05"
)

// Attendance is one recognised arrival of an employee
type Attendance struct {
	ID         int64     `json:"id"`
	EmployeeID *int64    `json:"employee_id,omitempty"`
	Name       string    `json:"name"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	CreatedAt  time.Time `json:"timestamp"`
}

// NewAttendance stamps an attendance record for the employee at the given instant
func NewAttendance(employee *Employee, at time.Time) *Attendance {
	id := employee.ID
	return &Attendance{
		EmployeeID: &id,
		Name:       employee.Name,
		Date:       at.Format(AttendanceDateLayout),
		Time:       at.Format(AttendanceTimeLayout),
		CreatedAt:  at,
	}
}
