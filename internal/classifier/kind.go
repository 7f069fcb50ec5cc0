package classifier

// ObjectKind is the category assigned to a classified statement. The value
// doubles as the fixed vocabulary of output directory names.
type ObjectKind string

const (
	KindTable           ObjectKind = "table"
	KindColumn          ObjectKind = "column"
	KindSequence        ObjectKind = "sequence"
	KindCollation       ObjectKind = "collation"
	KindIndex           ObjectKind = "index"
	KindClusteredIndex  ObjectKind = "clustered_index"
	KindConstraint      ObjectKind = "constraint"
	KindIdentity        ObjectKind = "identity"
	KindRowSecurity     ObjectKind = "row_level_security"
	KindReplicaIdentity ObjectKind = "replica_identity"
	KindFunction        ObjectKind = "function"
	KindProcedure       ObjectKind = "procedure"
	KindAggregate       ObjectKind = "aggregate"
	KindView            ObjectKind = "view"
	KindType            ObjectKind = "type"
	KindDomain          ObjectKind = "domain"
	KindExtension       ObjectKind = "extension"
	KindTrigger         ObjectKind = "trigger"
	KindRule            ObjectKind = "rule"
	KindSchema          ObjectKind = "schema"
	KindOwnership       ObjectKind = "ownership"
	KindACL             ObjectKind = "acl"
	KindComment         ObjectKind = "comment"
	KindDefault         ObjectKind = "default"
	KindPartition       ObjectKind = "partition"
	KindPublication     ObjectKind = "publication"
	KindSubscription    ObjectKind = "subscription"
	KindServer          ObjectKind = "server"
	KindEventTrigger    ObjectKind = "event_trigger"
	KindUserMapping     ObjectKind = "user_mapping"
	KindOther           ObjectKind = "other"
)

// knownKinds is the closed set of kinds the rule table can produce.
var knownKinds = map[ObjectKind]struct{}{
	KindTable:           {},
	KindColumn:          {},
	KindSequence:        {},
	KindCollation:       {},
	KindIndex:           {},
	KindClusteredIndex:  {},
	KindConstraint:      {},
	KindIdentity:        {},
	KindRowSecurity:     {},
	KindReplicaIdentity: {},
	KindFunction:        {},
	KindProcedure:       {},
	KindAggregate:       {},
	KindView:            {},
	KindType:            {},
	KindDomain:          {},
	KindExtension:       {},
	KindTrigger:         {},
	KindRule:            {},
	KindSchema:          {},
	KindOwnership:       {},
	KindACL:             {},
	KindComment:         {},
	KindDefault:         {},
	KindPartition:       {},
	KindPublication:     {},
	KindSubscription:    {},
	KindServer:          {},
	KindEventTrigger:    {},
	KindUserMapping:     {},
	KindOther:           {},
}

// Dir returns the output directory component for the kind. The kind name
// itself is the directory name; unknown values fall back to the catch-all.
func (k ObjectKind) Dir() string {
	if _, ok := knownKinds[k]; ok {
		return string(k)
	}
	return string(KindOther)
}

func (k ObjectKind) String() string {
	return string(k)
}

// Confidence describes how the schema attribution of a statement was obtained.
type Confidence int

const (
	// ConfidenceUnknown means the statement carries no schema information
	// and none could be derived.
	ConfidenceUnknown Confidence = iota

	// ConfidenceInferred means the schema was derived from context, such as
	// an earlier explicit declaration of the referenced object.
	ConfidenceInferred

	// ConfidenceExplicit means a schema qualifier is textually present.
	ConfidenceExplicit
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceExplicit:
		return "explicit"
	case ConfidenceInferred:
		return "inferred"
	default:
		return "unknown"
	}
}
