// Package classifier assigns an object kind and, where derivable, a schema
// and object name to each segmented statement. Classification is driven by
// an ordered table of pattern rules evaluated first-match-wins against the
// statement's leading keywords; statement internals are never fully parsed.
package classifier

import (
	"regexp"
	"strings"

	"github.com/pgschema/pgsplit/internal/segmenter"
)

// ClassifiedStatement is a RawStatement with its attribution attached.
// Schema and Name may be empty when Confidence is ConfidenceUnknown; the
// resolver fills them from context where possible. OwnerSchema/OwnerName
// reference the owning object for dependent statements (a sequence's
// OWNED BY table, an index's or trigger's target table) and are only used
// for affiliation resolution.
type ClassifiedStatement struct {
	Statement   segmenter.RawStatement
	Kind        ObjectKind
	Schema      string
	Name        string
	Confidence  Confidence
	OwnerSchema string
	OwnerName   string
}

// Classifier assigns a kind and attribution to raw statements.
type Classifier interface {
	Classify(stmt segmenter.RawStatement) ClassifiedStatement
}

type classifier struct {
	rules []rule
}

// NewClassifier creates a Classifier with the default rule table.
func NewClassifier() Classifier {
	return &classifier{rules: buildRules()}
}

// Classify runs the rule table against the statement's leading code.
// Unrecognized shapes classify as KindOther with unknown confidence; they
// are never fatal.
func (c *classifier) Classify(stmt segmenter.RawStatement) ClassifiedStatement {
	code := leadingCode(stmt.Text)
	for _, r := range c.rules {
		cls, ok := r(code)
		if !ok {
			continue
		}
		out := ClassifiedStatement{
			Statement:   stmt,
			Kind:        cls.kind,
			Schema:      cls.schema,
			Name:        cls.name,
			OwnerSchema: cls.ownerSchema,
			OwnerName:   cls.ownerName,
		}
		if out.Schema != "" {
			out.Confidence = ConfidenceExplicit
		}
		return out
	}
	return ClassifiedStatement{Statement: stmt, Kind: KindOther, Confidence: ConfidenceUnknown}
}

// classification is the partial result a rule extracts from a statement.
type classification struct {
	kind        ObjectKind
	schema      string
	name        string
	ownerSchema string
	ownerName   string
}

// rule inspects the leading code of a statement and either claims it,
// returning the extracted classification, or passes.
type rule func(code string) (classification, bool)

// ident matches a bare or double-quoted identifier.
const ident = `("[^"]+"|\w+)`

// qual matches an optionally schema-qualified identifier as two groups.
const qual = `(?:("[^"]+"|\w+)\.)?("[^"]+"|\w+)`

var (
	reCreateTable     = regexp.MustCompile(`(?i)^CREATE\s+(?:UNLOGGED\s+|FOREIGN\s+)?TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?` + qual)
	reCreateIndex     = regexp.MustCompile(`(?i)^CREATE\s+(?:UNIQUE\s+)?INDEX\s+(?:CONCURRENTLY\s+)?(?:IF\s+NOT\s+EXISTS\s+)?` + ident + `\s+ON\s+(?:ONLY\s+)?` + qual)
	reCreateView      = regexp.MustCompile(`(?i)^CREATE\s+(?:OR\s+REPLACE\s+)?(?:MATERIALIZED\s+)?VIEW\s+(?:IF\s+NOT\s+EXISTS\s+)?` + qual)
	reCreateFunction  = regexp.MustCompile(`(?i)^CREATE\s+(?:OR\s+REPLACE\s+)?FUNCTION\s+` + qual)
	reCreateProcedure = regexp.MustCompile(`(?i)^CREATE\s+(?:OR\s+REPLACE\s+)?PROCEDURE\s+` + qual)
	reCreateAggregate = regexp.MustCompile(`(?i)^CREATE\s+(?:OR\s+REPLACE\s+)?AGGREGATE\s+` + qual)
	reSequence        = regexp.MustCompile(`(?i)^(?:CREATE\s+(?:UNLOGGED\s+)?SEQUENCE(?:\s+IF\s+NOT\s+EXISTS)?|ALTER\s+SEQUENCE(?:\s+IF\s+EXISTS)?)\s+` + qual)
	reOwnedBy         = regexp.MustCompile(`(?i)\bOWNED\s+BY\s+` + qual + `\.` + ident)
	reCreateCollation = regexp.MustCompile(`(?i)^CREATE\s+COLLATION\s+(?:IF\s+NOT\s+EXISTS\s+)?` + qual)
	reCreateType      = regexp.MustCompile(`(?i)^CREATE\s+TYPE\s+` + qual)
	reCreateDomain    = regexp.MustCompile(`(?i)^CREATE\s+DOMAIN\s+` + qual)
	reCreateExtension = regexp.MustCompile(`(?i)^CREATE\s+EXTENSION\s+(?:IF\s+NOT\s+EXISTS\s+)?` + ident)
	reWithSchema      = regexp.MustCompile(`(?i)\bWITH\s+SCHEMA\s+` + ident)
	reCreateSchema    = regexp.MustCompile(`(?i)^CREATE\s+SCHEMA\s+(?:IF\s+NOT\s+EXISTS\s+)?(?:AUTHORIZATION\s+)?` + ident)
	reEventTrigger    = regexp.MustCompile(`(?i)^(?:CREATE|ALTER)\s+EVENT\s+TRIGGER\s+` + ident)
	reTrigger         = regexp.MustCompile(`(?i)^(?:CREATE\s+(?:OR\s+REPLACE\s+)?(?:CONSTRAINT\s+)?TRIGGER|ALTER\s+TRIGGER)\s+` + ident)
	reRuleStmt        = regexp.MustCompile(`(?i)^(?:CREATE\s+(?:OR\s+REPLACE\s+)?RULE|ALTER\s+RULE)\s+` + ident)
	reOnClause        = regexp.MustCompile(`(?i)\bON\s+(?:ONLY\s+)?` + qual)
	reToClause        = regexp.MustCompile(`(?i)\bTO\s+(?:ONLY\s+)?` + qual)
	reCreateServer    = regexp.MustCompile(`(?i)^CREATE\s+SERVER\s+(?:IF\s+NOT\s+EXISTS\s+)?` + ident)
	reUserMapping     = regexp.MustCompile(`(?i)^CREATE\s+USER\s+MAPPING\b`)
	rePublication     = regexp.MustCompile(`(?i)^(?:CREATE|ALTER)\s+PUBLICATION\s+` + ident)
	reSubscription    = regexp.MustCompile(`(?i)^(?:CREATE|ALTER)\s+SUBSCRIPTION\s+` + ident)
	reAlterTable      = regexp.MustCompile(`(?i)^ALTER\s+(?:FOREIGN\s+)?TABLE\s+(?:ONLY\s+)?(?:IF\s+EXISTS\s+)?` + qual)
	reComment         = regexp.MustCompile(`(?i)^COMMENT\s+ON\s+\w+\s+` + qual)
	reGrantRevoke     = regexp.MustCompile(`(?i)^(?:GRANT|REVOKE)\b`)
	reACLTarget       = regexp.MustCompile(`(?i)\bON\s+(?:TABLE\s+|SEQUENCE\s+|FUNCTION\s+|PROCEDURE\s+|ROUTINE\s+|SCHEMA\s+|ALL\s+\w+\s+IN\s+SCHEMA\s+)?` + qual)
	reOwnerClause     = regexp.MustCompile(`(?i)\b(?:OWNER\s+TO|OWNED\s+BY)\b`)
	reDisableTrigger  = regexp.MustCompile(`(?i)\b(?:DISABLE|ENABLE(?:\s+(?:REPLICA|ALWAYS))?)\s+TRIGGER\b`)
	reRowSecurity     = regexp.MustCompile(`(?i)\bROW\s+LEVEL\s+SECURITY\b`)
	reReplicaIdentity = regexp.MustCompile(`(?i)\bREPLICA\s+IDENTITY\b`)
	reClusterOn       = regexp.MustCompile(`(?i)\bCLUSTER\s+ON\b`)
	reAddConstraint   = regexp.MustCompile(`(?i)\bADD\s+CONSTRAINT\b`)
	reAddIdentity     = regexp.MustCompile(`(?i)\bADD\s+GENERATED\s+(?:ALWAYS|BY\s+DEFAULT)\s+AS\s+IDENTITY\b`)
	reSetDefault      = regexp.MustCompile(`(?i)\bSET\s+DEFAULT\b`)
	reAlterColumn     = regexp.MustCompile(`(?i)\bALTER\s+COLUMN\b`)
	rePartitionClause = regexp.MustCompile(`(?i)\b(?:ATTACH\s+PARTITION|INHERIT)\b`)
)

// qualRule builds a rule that extracts an optionally schema-qualified name.
func qualRule(kind ObjectKind, re *regexp.Regexp) rule {
	return func(code string) (classification, bool) {
		m := re.FindStringSubmatch(code)
		if m == nil {
			return classification{}, false
		}
		return classification{kind: kind, schema: unquote(m[1]), name: unquote(m[2])}, true
	}
}

// bareRule builds a rule for objects that are never schema-qualified.
func bareRule(kind ObjectKind, re *regexp.Regexp) rule {
	return func(code string) (classification, bool) {
		m := re.FindStringSubmatch(code)
		if m == nil {
			return classification{}, false
		}
		name := ""
		if len(m) > 1 {
			name = unquote(m[1])
		}
		return classification{kind: kind, name: name}, true
	}
}

// alterTableRule builds a rule for ALTER TABLE statements refined by a
// secondary clause predicate. The extracted name is the owning table, so
// dependent statements accumulate in that table's file.
func alterTableRule(kind ObjectKind, clause *regexp.Regexp) rule {
	return func(code string) (classification, bool) {
		m := reAlterTable.FindStringSubmatch(code)
		if m == nil {
			return classification{}, false
		}
		if clause != nil && !clause.MatchString(code) {
			return classification{}, false
		}
		return classification{kind: kind, schema: unquote(m[1]), name: unquote(m[2])}, true
	}
}

// buildRules returns the ordered rule table. Most specific rules first;
// order is load-bearing because later rules match broader shapes.
func buildRules() []rule {
	return []rule{
		qualRule(KindTable, reCreateTable),

		// Index: the object name is the index; the schema comes from the
		// target table's qualifier when present, otherwise from context.
		func(code string) (classification, bool) {
			m := reCreateIndex.FindStringSubmatch(code)
			if m == nil {
				return classification{}, false
			}
			return classification{
				kind:        KindIndex,
				name:        unquote(m[1]),
				schema:      unquote(m[2]),
				ownerSchema: unquote(m[2]),
				ownerName:   unquote(m[3]),
			}, true
		},

		qualRule(KindView, reCreateView),
		qualRule(KindFunction, reCreateFunction),
		qualRule(KindProcedure, reCreateProcedure),
		qualRule(KindAggregate, reCreateAggregate),

		// Sequence: both declarations and later ALTER SEQUENCE statements,
		// including the OWNED BY association that ties an unqualified
		// sequence to its owning table.
		func(code string) (classification, bool) {
			m := reSequence.FindStringSubmatch(code)
			if m == nil {
				return classification{}, false
			}
			cls := classification{kind: KindSequence, schema: unquote(m[1]), name: unquote(m[2])}
			if o := reOwnedBy.FindStringSubmatch(code); o != nil {
				cls.ownerSchema = unquote(o[1])
				cls.ownerName = unquote(o[2])
			}
			return cls, true
		},

		qualRule(KindCollation, reCreateCollation),
		qualRule(KindType, reCreateType),
		qualRule(KindDomain, reCreateDomain),

		// Extension: inherently non-schema-qualified unless the dump names
		// a target schema via WITH SCHEMA.
		func(code string) (classification, bool) {
			m := reCreateExtension.FindStringSubmatch(code)
			if m == nil {
				return classification{}, false
			}
			cls := classification{kind: KindExtension, name: unquote(m[1])}
			if s := reWithSchema.FindStringSubmatch(code); s != nil {
				cls.schema = unquote(s[1])
			}
			return cls, true
		},

		bareRule(KindSchema, reCreateSchema),

		// Ownership changes are grouped in one bucket regardless of the
		// altered object's kind. The dump is taken with --no-owner, so
		// these only appear when parsing externally produced dumps.
		// Sequence OWNED BY associations were already claimed above.
		func(code string) (classification, bool) {
			if !reOwnerClause.MatchString(code) {
				return classification{}, false
			}
			return classification{kind: KindOwnership}, true
		},

		bareRule(KindEventTrigger, reEventTrigger),

		// Trigger and rule statements attach to the table they fire on.
		targetRule(KindTrigger, reTrigger, reOnClause),
		targetRule(KindRule, reRuleStmt, reToClause),

		bareRule(KindServer, reCreateServer),
		bareRule(KindUserMapping, reUserMapping),
		bareRule(KindPublication, rePublication),
		bareRule(KindSubscription, reSubscription),

		// ALTER TABLE refinements. Identity and default clauses are checked
		// before the generic ALTER COLUMN refinement because both arrive as
		// "ALTER COLUMN x ADD GENERATED ..." / "ALTER COLUMN x SET DEFAULT".
		alterTableRule(KindTrigger, reDisableTrigger),
		alterTableRule(KindRowSecurity, reRowSecurity),
		alterTableRule(KindReplicaIdentity, reReplicaIdentity),
		alterTableRule(KindClusteredIndex, reClusterOn),
		alterTableRule(KindConstraint, reAddConstraint),
		alterTableRule(KindIdentity, reAddIdentity),
		alterTableRule(KindDefault, reSetDefault),
		alterTableRule(KindColumn, reAlterColumn),
		alterTableRule(KindPartition, rePartitionClause),
		alterTableRule(KindTable, nil),

		// ACL: GRANT/REVOKE, attributed to the target object when the
		// statement names one.
		func(code string) (classification, bool) {
			if !reGrantRevoke.MatchString(code) {
				return classification{}, false
			}
			cls := classification{kind: KindACL}
			if m := reACLTarget.FindStringSubmatch(code); m != nil {
				cls.schema = unquote(m[1])
				cls.name = unquote(m[2])
			}
			return cls, true
		},

		qualRule(KindComment, reComment),
	}
}

// targetRule builds a rule for statements of the form
// "CREATE <kind> name ... ON [schema.]table": the name is the object's own,
// the schema follows the target table.
func targetRule(kind ObjectKind, re, target *regexp.Regexp) rule {
	return func(code string) (classification, bool) {
		m := re.FindStringSubmatch(code)
		if m == nil {
			return classification{}, false
		}
		cls := classification{kind: kind, name: unquote(m[1])}
		if t := target.FindStringSubmatch(code); t != nil {
			cls.schema = unquote(t[1])
			cls.ownerSchema = unquote(t[1])
			cls.ownerName = unquote(t[2])
		}
		return cls, true
	}
}

// leadingCode returns the statement text with leading whitespace and
// comments removed, so rules match against the first keyword.
func leadingCode(text string) string {
	s := text
	for {
		s = strings.TrimLeft(s, " \t\r\n")
		switch {
		case strings.HasPrefix(s, "--"):
			nl := strings.IndexByte(s, '\n')
			if nl < 0 {
				return ""
			}
			s = s[nl+1:]
		case strings.HasPrefix(s, "/*"):
			end := strings.Index(s, "*/")
			if end < 0 {
				return ""
			}
			s = s[end+2:]
		default:
			return s
		}
	}
}

// unquote strips surrounding double quotes from an identifier.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
