package assistant

import (
	"fmt"
	"strings"
)

// Role gates which corpora a user may see.
type Role string

const (
	Customer Role = "customer"
	Employee Role = "employee"
)

// ParseRole accepts a role name or its menu number ("1" customer,
// "2" employee).
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "customer":
		return Customer, nil
	case "2", "employee":
		return Employee, nil
	}
	return "", fmt.Errorf("unknown role %q (want customer or employee)", s)
}

// Roles lists the selectable roles in menu order.
func Roles() []Role {
	return []Role{Customer, Employee}
}

func (r Role) String() string { return string(r) }

// Title is the capitalized name shown in menus.
func (r Role) Title() string {
	if r == "" {
		return ""
	}
	return strings.ToUpper(string(r[:1])) + string(r[1:])
}
