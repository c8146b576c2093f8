// model/graph/relationships.go
package graph

// Relationship Types
const (
	// RelPartOf links a workshop to its branch and a branch to its enterprise
	RelPartOf = "PART_OF"

	// RelLocatedIn links equipment to its workshop
	RelLocatedIn = "LOCATED_IN"

	// RelOfType links equipment to its equipment type
	RelOfType = "OF_TYPE"

	// RelHasGrant links a principal to an access grant record
	RelHasGrant = "HAS_GRANT"

	// RelScopedTo links an access grant to the hierarchy node it covers
	RelScopedTo = "SCOPED_TO"

	// RelAssignedTo links an assignment to the engineer responsible for it
	RelAssignedTo = "ASSIGNED_TO"

	// RelTargets links an assignment to its equipment
	RelTargets = "TARGETS"
)
