package rbac

import "sort"

// capability tags gating console sections
const (
	AccessDashboard     = "access-dashboard"     // Landing dashboard and KPIs
	AccessOrders        = "access-orders"        // Order list and details
	AccessOrderIntake   = "access-order-intake"  // Create orders
	AccessPricing       = "access-pricing"       // Pricing configuration screens
	AccessFleet         = "access-fleet"         // Fleet and courier tables
	AccessBatches       = "access-batches"       // Batch dispatch tables
	AccessNotifications = "access-notifications" // Notification feed
	AccessUsers         = "access-users"         // User management
	AccessReports       = "access-reports"       // Reports and exports
	AccessSettings      = "access-settings"      // Console settings
)

// Role names
const (
	RoleAdmin      = "admin"      // Full access
	RoleManager    = "manager"    // Operations lead
	RoleDispatcher = "dispatcher" // Assigns batches to the fleet
	RoleOperator   = "operator"   // Takes orders
	RoleAccountant = "accountant" // Pricing and reports
)

// AllPermissions lists the closed set of capability tags.
var AllPermissions = []string{
	AccessDashboard,
	AccessOrders,
	AccessOrderIntake,
	AccessPricing,
	AccessFleet,
	AccessBatches,
	AccessNotifications,
	AccessUsers,
	AccessReports,
	AccessSettings,
}

// Policy maps a role name to its capability tags.
type Policy map[string][]string

// DefaultPolicy is the built-in role table.
func DefaultPolicy() Policy {
	return Policy{
		RoleAdmin: append([]string(nil), AllPermissions...),
		RoleManager: {
			AccessDashboard, AccessOrders, AccessOrderIntake, AccessFleet,
			AccessBatches, AccessNotifications, AccessReports,
		},
		RoleDispatcher: {
			AccessDashboard, AccessOrders, AccessFleet, AccessBatches, AccessNotifications,
		},
		RoleOperator: {
			AccessDashboard, AccessOrders, AccessOrderIntake, AccessNotifications,
		},
		RoleAccountant: {
			AccessDashboard, AccessPricing, AccessReports, AccessNotifications,
		},
	}
}

// Resolver answers permission membership queries against a fixed policy.
// It is immutable after construction and safe for concurrent use.
type Resolver struct {
	roles map[string]map[string]struct{}
}

func NewResolver(policy Policy) *Resolver {
	roles := make(map[string]map[string]struct{}, len(policy))
	for role, perms := range policy {
		set := make(map[string]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		roles[role] = set
	}
	return &Resolver{roles: roles}
}

// HasPermission reports whether permission is configured for role.
// Unknown roles have no permissions.
func (r *Resolver) HasPermission(role, permission string) bool {
	set, ok := r.roles[role]
	if !ok {
		return false
	}
	_, ok = set[permission]
	return ok
}

// HasAnyPermission reports whether role holds at least one of permissions.
func (r *Resolver) HasAnyPermission(role string, permissions ...string) bool {
	for _, p := range permissions {
		if r.HasPermission(role, p) {
			return true
		}
	}
	return false
}

// RolePermissions returns a sorted copy of the role's capability set.
func (r *Resolver) RolePermissions(role string) []string {
	set := r.roles[role]
	perms := make([]string, 0, len(set))
	for p := range set {
		perms = append(perms, p)
	}
	sort.Strings(perms)
	return perms
}

// IsKnownPermission reports whether p belongs to the closed capability set.
func IsKnownPermission(p string) bool {
	for _, known := range AllPermissions {
		if known == p {
			return true
		}
	}
	return false
}
