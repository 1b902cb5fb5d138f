// Package rbac is the single place where role-based permissions are decided.
package rbac

import (
	"trainingdesk/internal/apperr"
	"trainingdesk/internal/model"

	"github.com/google/uuid"
)

// Actor is the authenticated caller of an operation. The role claim is trusted as given.
type Actor struct {
	ID   uuid.UUID
	Role model.Role
}

// Action names an operation guarded by the role gate, in resource:verb form.
type Action string

const (
	ApplicationApply    Action = "application:apply"
	ApplicationApprove  Action = "application:approve"
	ApplicationReject   Action = "application:reject"
	ApplicationComplete Action = "application:complete"
	ApplicationWithdraw Action = "application:withdraw"

	PaymentRequest  Action = "payment:request"
	PaymentApprove  Action = "payment:approve"
	PaymentReject   Action = "payment:reject"
	PaymentComplete Action = "payment:complete"
	PaymentExport   Action = "payment:export"

	RateRead    Action = "rate:read"
	RateManage  Action = "rate:manage"
	LevelAssign Action = "level:assign"

	ContractCreate    Action = "contract:create"
	ContractActivate  Action = "contract:activate"
	ContractComplete  Action = "contract:complete"
	ContractTerminate Action = "contract:terminate"

	WarrantyCreate Action = "warranty:create"
	WarrantyRead   Action = "warranty:read"
	WarrantyUpdate Action = "warranty:update"
	WarrantyExpire Action = "warranty:expire"
	WarrantyClaim  Action = "warranty:claim"

	CertificateIssue Action = "certificate:issue"

	TrainingCreate     Action = "training:create"
	TrainingUpdate     Action = "training:update"
	TrainingDelete     Action = "training:delete"
	TrainingTypeManage Action = "training-type:manage"

	DepartmentManage Action = "department:manage"
	InnovationManage Action = "innovation:manage"

	UserListStaff   Action = "user:list-staff"
	UserListTrainer Action = "user:list-trainer"
	UserListRworker Action = "user:list-rworker"
	UserListTrainee Action = "user:list-trainee"

	AuditRead      Action = "audit:read"
	StatisticsRead Action = "statistics:read"
)

var (
	staffOrAdmin = roles(model.RoleStaff, model.RoleAdmin)
	everyone     = roles(model.Roles...)
)

// permissions maps every action to the roles allowed to perform it.
// An action missing from the table is denied to everyone.
var permissions = map[Action]map[model.Role]bool{
	ApplicationApply:    roles(model.RoleTrainer),
	ApplicationApprove:  staffOrAdmin,
	ApplicationReject:   staffOrAdmin,
	ApplicationComplete: staffOrAdmin,
	ApplicationWithdraw: roles(model.RoleTrainer),

	PaymentRequest:  roles(model.RoleTrainer),
	PaymentApprove:  staffOrAdmin,
	PaymentReject:   staffOrAdmin,
	PaymentComplete: staffOrAdmin,
	PaymentExport:   staffOrAdmin,

	RateRead:    everyone,
	RateManage:  staffOrAdmin,
	LevelAssign: staffOrAdmin,

	ContractCreate:    roles(model.RoleAdmin, model.RoleStaff, model.RoleTrainer),
	ContractActivate:  staffOrAdmin,
	ContractComplete:  staffOrAdmin,
	ContractTerminate: staffOrAdmin,

	WarrantyCreate: staffOrAdmin,
	WarrantyRead:   staffOrAdmin,
	WarrantyUpdate: staffOrAdmin,
	WarrantyExpire: staffOrAdmin,
	WarrantyClaim:  staffOrAdmin,

	CertificateIssue: staffOrAdmin,

	TrainingCreate:     roles(model.RoleAdmin, model.RoleStaff, model.RoleRworker),
	TrainingUpdate:     staffOrAdmin,
	TrainingDelete:     staffOrAdmin,
	TrainingTypeManage: staffOrAdmin,

	DepartmentManage: staffOrAdmin,
	InnovationManage: everyone,

	UserListStaff:   roles(model.RoleAdmin),
	UserListTrainer: staffOrAdmin,
	UserListRworker: staffOrAdmin,
	UserListTrainee: everyone,

	AuditRead:      roles(model.RoleAdmin),
	StatisticsRead: staffOrAdmin,
}

// registrars maps a registering role to the roles it may create.
// Trainee self-registration is open to everyone and handled separately.
var registrars = map[model.Role]map[model.Role]bool{
	model.RoleAdmin: roles(model.RoleStaff),
	model.RoleStaff: roles(model.RoleTrainer, model.RoleRworker),
}

func roles(rs ...model.Role) map[model.Role]bool {
	set := make(map[model.Role]bool, len(rs))
	for _, r := range rs {
		set[r] = true
	}
	return set
}

// Allowed reports whether role may perform action.
func Allowed(role model.Role, action Action) bool {
	return permissions[action][role]
}

// Authorize returns a Forbidden error unless the actor's role may perform action.
func Authorize(actor Actor, action Action) error {
	if !Allowed(actor.Role, action) {
		return apperr.Forbidden("role %q may not perform %s", actor.Role, action)
	}
	return nil
}

// CanRegister decides whether actor (nil when anonymous) may create a user with target role.
func CanRegister(actor *Actor, target model.Role) error {
	if !target.Valid() {
		return apperr.Validation("unknown role %q", target)
	}
	if target == model.RoleTrainee {
		return nil
	}
	if actor != nil && registrars[actor.Role][target] {
		return nil
	}
	return apperr.Forbidden("you don't have permission to register users with role %q", target)
}

// ListActionFor returns the action guarding the listing of users with role r.
func ListActionFor(r model.Role) (Action, bool) {
	switch r {
	case model.RoleStaff:
		return UserListStaff, true
	case model.RoleTrainer:
		return UserListTrainer, true
	case model.RoleRworker:
		return UserListRworker, true
	case model.RoleTrainee:
		return UserListTrainee, true
	}
	return "", false
}

// SeesAll reports whether actor may see every record of a scoped listing
// (applications, payments, certificates, contracts, trainings). Everyone else
// sees only the records they own.
func SeesAll(actor Actor) bool {
	return staffOrAdmin[actor.Role]
}

// CanView reports whether actor may read a record owned by ownerID.
func CanView(actor Actor, ownerID uuid.UUID) error {
	if SeesAll(actor) || actor.ID == ownerID {
		return nil
	}
	return apperr.Forbidden("you can only view your own records")
}
