package model

// EngineerProgress is one engineer's completion tally over the
// equipment set of a single hierarchy node. All arithmetic is integer:
// ProgressPct is floor(100*Completed/Total), 0 when Total is 0.
type EngineerProgress struct {
	ObjectType   ScopeLevel `json:"object_type"`
	ObjectID     string     `json:"object_id"`
	ObjectName   string     `json:"object_name"`
	EngineerID   string     `json:"engineer_id"`
	EngineerName string     `json:"engineer_name"`
	Total        int        `json:"total"`
	Completed    int        `json:"completed"`
	Remaining    int        `json:"remaining"`
	ProgressPct  int        `json:"progress_pct"`
}

// ObjectProgress groups engineer tallies under the hierarchy node they
// were computed for, used by the aggregate listing.
type ObjectProgress struct {
	ObjectType ScopeLevel         `json:"object_type"`
	ObjectID   string             `json:"object_id"`
	ObjectName string             `json:"object_name"`
	Engineers  []EngineerProgress `json:"engineers"`
}
