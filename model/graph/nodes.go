// model/graph/nodes.go
package graph

// Node Labels
const (
	// LabelEnterprise represents the top tier of the location hierarchy
	LabelEnterprise = "Enterprise"

	// LabelBranch represents a branch within an enterprise
	LabelBranch = "Branch"

	// LabelWorkshop represents a workshop within a branch
	LabelWorkshop = "Workshop"

	// LabelEquipmentType represents the orthogonal classification axis
	LabelEquipmentType = "EquipmentType"

	// LabelEquipment represents a single piece of industrial equipment
	LabelEquipment = "Equipment"

	// LabelUser represents a principal in the system
	LabelUser = "User"

	// LabelAccessGrant represents one principal's grant on one scope node
	LabelAccessGrant = "AccessGrant"

	// LabelAssignment represents a diagnostic/expertise/inspection task
	LabelAssignment = "Assignment"
)
