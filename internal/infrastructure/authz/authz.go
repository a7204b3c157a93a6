// Package authz decides role permissions with a casbin RBAC model. Ownership
// checks stay in the services; this layer only answers "may this role try".
package authz

import (
	"fmt"

	"github.com/Zhima-Mochi/fooddelivery/internal/domain/account"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/token"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const (
	ResourceProfile   = "profile"
	ResourceCustomers = "customers"
	ResourcePartners  = "partners"
	ResourceAdmins    = "admins"
	ResourceStores    = "stores"
	ResourceProducts  = "products"
	ResourceOrders    = "orders"

	ActionRead     = "read"
	ActionWrite    = "write"
	ActionDelete   = "delete"
	ActionVerify   = "verify"
	ActionCreate   = "create"
	ActionCheckout = "checkout"
	ActionCancel   = "cancel"
	ActionRefund   = "refund"
)

const (
	SubjectAdmin           = "admin"
	SubjectCustomer        = "customer"
	SubjectPartner         = "partner"
	SubjectVerifiedPartner = "verified_partner"

	subjectAuthenticated = "authenticated"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

var policies = [][]string{
	{subjectAuthenticated, ResourceProfile, ActionRead},
	{subjectAuthenticated, ResourceProfile, ActionWrite},
	{subjectAuthenticated, ResourceOrders, ActionRead},

	{SubjectAdmin, ResourceCustomers, ActionRead},
	{SubjectAdmin, ResourceCustomers, ActionDelete},
	{SubjectAdmin, ResourcePartners, ActionRead},
	{SubjectAdmin, ResourcePartners, ActionDelete},
	{SubjectAdmin, ResourcePartners, ActionVerify},
	{SubjectAdmin, ResourceAdmins, ActionWrite},
	{SubjectAdmin, ResourceStores, ActionDelete},

	{SubjectCustomer, ResourceCustomers, ActionWrite},
	{SubjectCustomer, ResourceOrders, ActionCreate},
	{SubjectCustomer, ResourceOrders, ActionCheckout},
	{SubjectCustomer, ResourceOrders, ActionCancel},
	{SubjectCustomer, ResourceOrders, ActionRefund},

	{SubjectPartner, ResourcePartners, ActionWrite},

	{SubjectVerifiedPartner, ResourceStores, ActionWrite},
	{SubjectVerifiedPartner, ResourceStores, ActionDelete},
	{SubjectVerifiedPartner, ResourceProducts, ActionWrite},
	{SubjectVerifiedPartner, ResourceProducts, ActionDelete},
}

var groupings = [][]string{
	{SubjectAdmin, subjectAuthenticated},
	{SubjectCustomer, subjectAuthenticated},
	{SubjectPartner, subjectAuthenticated},
	{SubjectVerifiedPartner, SubjectPartner},
}

type Authorizer struct {
	enforcer *casbin.Enforcer
}

func New() (*Authorizer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("authz: model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("authz: enforcer: %w", err)
	}
	if _, err := e.AddPolicies(policies); err != nil {
		return nil, fmt.Errorf("authz: policies: %w", err)
	}
	if _, err := e.AddGroupingPolicies(groupings); err != nil {
		return nil, fmt.Errorf("authz: groupings: %w", err)
	}
	return &Authorizer{enforcer: e}, nil
}

// SubjectFor maps claims to a casbin subject. Partners are promoted to
// verified_partner once an admin accepted them.
func SubjectFor(c token.Claims) string {
	switch c.Role {
	case account.RoleAdmin:
		return SubjectAdmin
	case account.RoleCustomer:
		return SubjectCustomer
	case account.RolePartner:
		if c.Status == account.StatusAccepted {
			return SubjectVerifiedPartner
		}
		return SubjectPartner
	default:
		return ""
	}
}

func (a *Authorizer) Can(c token.Claims, resource, action string) (bool, error) {
	sub := SubjectFor(c)
	if sub == "" {
		return false, nil
	}
	ok, err := a.enforcer.Enforce(sub, resource, action)
	if err != nil {
		return false, fmt.Errorf("authz: enforce: %w", err)
	}
	return ok, nil
}
