package account

import (
	"strings"
	"time"

	"github.com/Zhima-Mochi/fooddelivery/internal/domain/errs"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RolePartner  Role = "partner"
	RoleCustomer Role = "customer"
)

// ParseRole accepts role names case-insensitively.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RolePartner:
		return RolePartner, nil
	case RoleCustomer:
		return RoleCustomer, nil
	}
	return "", errs.Validation("Invalid user type: %s", s)
}

// Title is the capitalised role name used in user-facing messages.
func (r Role) Title() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RolePartner:
		return "Partner"
	case RoleCustomer:
		return "Customer"
	}
	return "User"
}

type PartnerStatus string

const (
	StatusPending  PartnerStatus = "pending"
	StatusAccepted PartnerStatus = "accepted"
	StatusRejected PartnerStatus = "rejected"
)

func ParsePartnerStatus(s string) (PartnerStatus, error) {
	switch PartnerStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, nil
	case StatusAccepted:
		return StatusAccepted, nil
	case StatusRejected:
		return StatusRejected, nil
	}
	return "", errs.Validation("Invalid partner status: %s", s)
}

// PartnerDetails is the role payload carried only by partner accounts.
type PartnerDetails struct {
	Status PartnerStatus
}

// Account is the common shape of admins, partners and customers. Each role is
// persisted separately; uniqueness of username and email is scoped to a role.
type Account struct {
	ID            string
	Role          Role
	Username      string
	PasswordHash  string
	Email         string
	FirstName     string
	LastName      string
	Image         string
	ImagePublicID string
	Partner       *PartnerDetails
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Profile holds the user-editable fields.
type Profile struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
}

func New(id string, role Role, p Profile, passwordHash string, now time.Time) *Account {
	a := &Account{
		ID:           id,
		Role:         role,
		Username:     p.Username,
		PasswordHash: passwordHash,
		Email:        p.Email,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if role == RolePartner {
		a.Partner = &PartnerDetails{Status: StatusPending}
	}
	return a
}

// Status returns the partner verification status, or "" for other roles.
func (a *Account) Status() PartnerStatus {
	if a == nil || a.Partner == nil {
		return ""
	}
	return a.Partner.Status
}

func (a *Account) SetStatus(s PartnerStatus, now time.Time) {
	if a.Partner == nil {
		a.Partner = &PartnerDetails{}
	}
	a.Partner.Status = s
	a.UpdatedAt = now
}

func (a *Account) ApplyProfile(p Profile, now time.Time) {
	a.Username = p.Username
	a.Email = p.Email
	a.FirstName = p.FirstName
	a.LastName = p.LastName
	a.UpdatedAt = now
}

func (a *Account) SetImage(url, publicID string, now time.Time) {
	a.Image = url
	a.ImagePublicID = publicID
	a.UpdatedAt = now
}

func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	if a.Partner != nil {
		p := *a.Partner
		c.Partner = &p
	}
	return &c
}
