package common

import "github.com/campus-events/backend/internal/entity"

// RBAC lists the global roles allowed on each protected path. A path missing
// from this map only requires an authenticated user.
var RBAC = map[string][]entity.GlobalRole{
	"/requestUpgrade":     {entity.RoleStudent},
	"/getUpgradeRequests": entity.GlobalAdminRoles,
	"/reviewUpgrade":      entity.GlobalAdminRoles,

	"/createEvent":       entity.OrganizerRoles,
	"/updateEvent":       entity.OrganizerRoles,
	"/deleteEvent":       entity.OrganizerRoles,
	"/getMyEvents":       entity.OrganizerRoles,
	"/uploadEventPoster": entity.OrganizerRoles,

	"/createDiscount":    entity.OrganizerRoles,
	"/getDiscounts":      entity.OrganizerRoles,
	"/setDiscountActive": entity.OrganizerRoles,

	"/reviewPayment":   entity.OrganizerRoles,
	"/getEventTickets": entity.OrganizerRoles,

	"/scanCheckIn":   entity.OrganizerRoles,
	"/manualCheckIn": entity.OrganizerRoles,
	"/getAttendance": entity.OrganizerRoles,

	"/getWaitlist": entity.OrganizerRoles,

	"/getEventStatistic":    entity.OrganizerRoles,
	"/getPlatformStatistic": entity.GlobalAdminRoles,
}
