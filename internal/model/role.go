package model

// Role is the organizational role of a user. It drives every authorization decision.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStaff   Role = "staff"
	RoleTrainer Role = "trainer"
	RoleRworker Role = "rworker" // regional worker
	RoleTrainee Role = "trainee"
)

// Roles lists every known role.
var Roles = []Role{RoleAdmin, RoleStaff, RoleTrainer, RoleRworker, RoleTrainee}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// Sex enum
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)
