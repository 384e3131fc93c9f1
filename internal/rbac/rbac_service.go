package rbac

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"go-leavedesk/internal/domain"
)

// Resources and actions gated at the route level. Ownership checks
// (who may decide a specific request) stay in the leave service; this
// table only answers "may this role hit this endpoint at all".
const (
	ResourceLeave  = "leave"
	ResourceUser   = "user"
	ResourcePolicy = "policy"

	ActionReadTeam = "read_team"
	ActionReadAll  = "read_all"
	ActionDecide   = "decide"
	ActionManage   = "manage"
	ActionWrite    = "write"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	Enforce(role, resource, action string) (bool, error)
}

type service struct {
	enforcer *casbin.Enforcer
}

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

// rolePermissions is the full role -> resource:action matrix. Routes
// open to any authenticated caller (create/list-mine/cancel a leave,
// read policies, list managers) are not listed here.
var rolePermissions = [][]string{
	{domain.RoleAdmin, ResourceLeave, ActionReadAll},
	{domain.RoleAdmin, ResourceLeave, ActionDecide},
	{domain.RoleAdmin, ResourceUser, ActionManage},
	{domain.RoleAdmin, ResourcePolicy, ActionWrite},

	{domain.RoleManager, ResourceLeave, ActionReadTeam},
	{domain.RoleManager, ResourceLeave, ActionDecide},
}

func NewService() (Service, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	if _, err := enforcer.AddPolicies(rolePermissions); err != nil {
		return nil, err
	}

	return &service{enforcer: enforcer}, nil
}

func (s *service) Enforce(role, resource, action string) (bool, error) {
	return s.enforcer.Enforce(role, resource, action)
}
