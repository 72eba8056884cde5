package entity

import (
	"time"

	"github.com/campus-events/backend/pkg/enum"
)

type GlobalRole string

var (
	RoleStudent   = enum.New(GlobalRole("student"))
	RoleCommittee = enum.New(GlobalRole("committee"))
	RoleAdmin     = enum.New(GlobalRole("admin"))
)

var (
	GlobalAdminRoles = []GlobalRole{RoleAdmin}
	OrganizerRoles   = []GlobalRole{RoleCommittee, RoleAdmin}
	AllRoles         = []GlobalRole{RoleStudent, RoleCommittee, RoleAdmin}
)

type User struct {
	Base

	Email        string `gorm:"unique"`
	PasswordHash string
	Name         string
	RollNumber   string
	Phone        string
	Role         GlobalRole
}

type UpgradeRequestStatus string

var (
	UpgradePending  = enum.New(UpgradeRequestStatus("pending"))
	UpgradeApproved = enum.New(UpgradeRequestStatus("approved"))
	UpgradeRejected = enum.New(UpgradeRequestStatus("rejected"))
)

// UpgradeRequest asks an admin to promote a student to committee.
type UpgradeRequest struct {
	Base

	UserID string `gorm:"index"`
	User   User   `gorm:"foreignKey:UserID"`

	Reason     string
	Status     UpgradeRequestStatus
	ReviewerID string
	ReviewedAt *time.Time
}
