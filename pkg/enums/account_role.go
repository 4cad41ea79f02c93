package enums

import "fmt"

// AccountRole distinguishes tradesman businesses from customers.
type AccountRole string

const (
	AccountRoleBusiness AccountRole = "business"
	AccountRoleCustomer AccountRole = "customer"
	AccountRoleAdmin    AccountRole = "admin"
)

var validAccountRoles = []AccountRole{
	AccountRoleBusiness,
	AccountRoleCustomer,
	AccountRoleAdmin,
}

func (a AccountRole) String() string {
	return string(a)
}

func (a AccountRole) IsValid() bool {
	for _, candidate := range validAccountRoles {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAccountRole converts raw input into an AccountRole.
func ParseAccountRole(value string) (AccountRole, error) {
	for _, candidate := range validAccountRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid account role %q", value)
}
