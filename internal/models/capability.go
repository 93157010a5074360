package models

// Capability is a named permission a family membership grants toward circles.
// A user's power to act on behalf of their family is always derived from the
// capabilities on their own membership row, never from the circle directly.
type Capability string

const (
	// CapJoinCircles allows connecting the family to a circle
	CapJoinCircles Capability = "join_circles"
	// CapShareToCircles allows sharing family data with circles
	CapShareToCircles Capability = "share_to_circles"
	// CapManageCircleAccess allows leaving circles and managing circle membership
	CapManageCircleAccess Capability = "manage_circle_access"
)

// AllCapabilities lists every circle capability in a stable order
var AllCapabilities = []Capability{CapJoinCircles, CapShareToCircles, CapManageCircleAccess}
