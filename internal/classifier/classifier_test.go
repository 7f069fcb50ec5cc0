package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pgschema/pgsplit/internal/segmenter"
)

func classify(t *testing.T, text string) ClassifiedStatement {
	t.Helper()
	c := NewClassifier()
	return c.Classify(segmenter.RawStatement{Text: text, StartLine: 1, EndLine: 1})
}

func TestClassifier_Kinds(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		kind       ObjectKind
		schema     string
		objectName string
		confidence Confidence
	}{
		{
			name:       "Create table",
			input:      "CREATE TABLE public.t1 (\n    id integer NOT NULL\n);",
			kind:       KindTable,
			schema:     "public",
			objectName: "t1",
			confidence: ConfidenceExplicit,
		},
		{
			name:       "Create unlogged table unqualified",
			input:      "CREATE UNLOGGED TABLE scratch (id integer);",
			kind:       KindTable,
			objectName: "scratch",
			confidence: ConfidenceUnknown,
		},
		{
			name:       "Create foreign table",
			input:      "CREATE FOREIGN TABLE audit.events (id integer) SERVER remote;",
			kind:       KindTable,
			schema:     "audit",
			objectName: "events",
			confidence: ConfidenceExplicit,
		},
		{
			name:       "Quoted identifiers",
			input:      `CREATE TABLE "My Schema"."My Table" (id integer);`,
			kind:       KindTable,
			schema:     "My Schema",
			objectName: "My Table",
			confidence: ConfidenceExplicit,
		},
		{
			name:       "Add constraint attributed to owning table",
			input:      "ALTER TABLE ONLY public.t1\n    ADD CONSTRAINT t1_pkey PRIMARY KEY (id);",
			kind:       KindConstraint,
			schema:     "public",
			objectName: "t1",
			confidence: ConfidenceExplicit,
		},
		{
			name:       "Column default",
			input:      "ALTER TABLE ONLY public.t1 ALTER COLUMN id SET DEFAULT nextval('public.t1_id_seq'::regclass);",
			kind:       KindDefault,
			schema:     "public",
			objectName: "t1",
			confidence: ConfidenceExplicit,
		},
		{
			name:       "Column type change",
			input:      "ALTER TABLE ONLY public.t1 ALTER COLUMN name TYPE text;",
			kind:       KindColumn,
			schema:     "public",
			objectName: "t1",
			confidence: ConfidenceExplicit,
		},
		{
			name:       "Identity column",
			input:      "ALTER TABLE public.t1 ALTER COLUMN id ADD GENERATED ALWAYS AS IDENTITY (\n    SEQUENCE NAME public.t1_id_seq\n);",
			kind:       KindIdentity,
			schema:     "public",
			objectName: "t1",
			confidence: ConfidenceExplicit,
		},
		{
			name:       "Cluster marker",
			input:      "ALTER TABLE public.t1 CLUSTER ON t1_pkey;",
			kind:       KindClusteredIndex,
			schema:     "public",
			objectName: "t1",
			confidence: ConfidenceExplicit,
		},
		{
			name:       "Row level security",
			input:      "ALTER TABLE public.t1 ENABLE ROW LEVEL SECURITY;",
			kind:       KindRowSecurity,
			schema:     "public",
			objectName: "t1",
			confidence: ConfidenceExplicit,
		},
		{
			name:       "Replica identity",
			input:      "ALTER TABLE ONLY public.t1 REPLICA IDENTITY FULL;",
			kind:       KindReplicaIdentity,
			schema:     "public",
			objectName: "t1",
			confidence: ConfidenceExplicit,
		},
		{
			name:       "Attach partition",
			input:      "ALTER TABLE ONLY public.measurements ATTACH PARTITION public.measurements_2024 FOR VALUES FROM ('2024-01-01') TO ('2025-01-01');",
			kind:       KindPartition,
			schema:     "public",
			objectName: "measurements",
			confidence: ConfidenceExplicit,
		},
		{
			name:       "Disable trigger groups with triggers",
			input:      "ALTER TABLE public.t1 DISABLE TRIGGER audit_trg;",
			kind:       KindTrigger,
			schema:     "public",
			objectName: "t1",
			confidence: ConfidenceExplicit,
		},
		{
			name:       "Generic alter table",
			input:      "ALTER TABLE public.t1 SET (fillfactor = 70);",
			kind:       KindTable,
			schema:     "public",
			objectName: "t1",
			confidence: ConfidenceExplicit,
		},
		{
			name:       "Index named after itself",
			input:      "CREATE INDEX t1_name_idx ON public.t1 USING btree (name);",
			kind:       KindIndex,
			schema:     "public",
			objectName: "t1_name_idx",
			confidence: ConfidenceExplicit,
		},
		{
			name:       "Unique index on unqualified table",
			input:      "CREATE UNIQUE INDEX t1_code_key ON t1 (code);",
			kind:       KindIndex,
			objectName: "t1_code_key",
			confidence: ConfidenceUnknown,
		},
		{
			name:       "View",
			input:      "CREATE VIEW public.active_users AS\n SELECT * FROM public.users WHERE active;",
			kind:       KindView,
			schema:     "public",
			objectName: "active_users",
			confidence: ConfidenceExplicit,
		},
		{
			name:       "Materialized view",
			input:      "CREATE MATERIALIZED VIEW reporting.daily AS SELECT 1;",
			kind:       KindView,
			schema:     "reporting",
			objectName: "daily",
			confidence: ConfidenceExplicit,
		},
		{
			name:       "Function",
			input:      "CREATE FUNCTION public.touch() RETURNS trigger\n    LANGUAGE plpgsql\n    AS $$ BEGIN NEW.updated_at = now(); RETURN NEW; END $$;",
			kind:       KindFunction,
			schema:     "public",
			objectName: "touch",
			confidence: ConfidenceExplicit,
		},
		{
			name:       "Procedure",
			input:      "CREATE OR REPLACE PROCEDURE public.cleanup() LANGUAGE sql AS $$ DELETE FROM public.t1 $$;",
			kind:       KindProcedure,
			schema:     "public",
			objectName: "cleanup",
			confidence: ConfidenceExplicit,
		},
		{
			name:       "Aggregate",
			input:      "CREATE AGGREGATE public.array_accum(anyelement) (sfunc = array_append, stype = anyarray);",
			kind:       KindAggregate,
			schema:     "public",
			objectName: "array_accum",
			confidence: ConfidenceExplicit,
		},
		{
			name:       "Sequence declaration",
			input:      "CREATE SEQUENCE public.t1_id_seq\n    START WITH 1\n    INCREMENT BY 1;",
			kind:       KindSequence,
			schema:     "public",
			objectName: "t1_id_seq",
			confidence: ConfidenceExplicit,
		},
		{
			name:       "Collation is a first-class kind",
			input:      "CREATE COLLATION public.c1 (provider = icu, locale = 'de-DE');",
			kind:       KindCollation,
			schema:     "public",
			objectName: "c1",
			confidence: ConfidenceExplicit,
		},
		{
			name:       "Type",
			input:      "CREATE TYPE public.mood AS ENUM ('sad', 'ok', 'happy');",
			kind:       KindType,
			schema:     "public",
			objectName: "mood",
			confidence: ConfidenceExplicit,
		},
		{
			name:       "Domain",
			input:      "CREATE DOMAIN public.posint AS integer CHECK (VALUE > 0);",
			kind:       KindDomain,
			schema:     "public",
			objectName: "posint",
			confidence: ConfidenceExplicit,
		},
		{
			name:       "Extension with target schema",
			input:      "CREATE EXTENSION IF NOT EXISTS hstore WITH SCHEMA public;",
			kind:       KindExtension,
			schema:     "public",
			objectName: "hstore",
			confidence: ConfidenceExplicit,
		},
		{
			name:       "Extension without schema",
			input:      "CREATE EXTENSION pg_trgm;",
			kind:       KindExtension,
			objectName: "pg_trgm",
			confidence: ConfidenceUnknown,
		},
		{
			name:       "Schema",
			input:      "CREATE SCHEMA app;",
			kind:       KindSchema,
			objectName: "app",
			confidence: ConfidenceUnknown,
		},
		{
			name:       "Trigger follows its table",
			input:      "CREATE TRIGGER touch_trg BEFORE UPDATE ON public.t1 FOR EACH ROW EXECUTE FUNCTION public.touch();",
			kind:       KindTrigger,
			schema:     "public",
			objectName: "touch_trg",
			confidence: ConfidenceExplicit,
		},
		{
			name:       "Rewrite rule follows its view",
			input:      "CREATE RULE protect AS ON DELETE TO public.active_users DO INSTEAD NOTHING;",
			kind:       KindRule,
			schema:     "public",
			objectName: "protect",
			confidence: ConfidenceExplicit,
		},
		{
			name:       "Event trigger",
			input:      "CREATE EVENT TRIGGER abort_ddl ON ddl_command_start EXECUTE FUNCTION public.abort();",
			kind:       KindEventTrigger,
			objectName: "abort_ddl",
			confidence: ConfidenceUnknown,
		},
		{
			name:       "Server",
			input:      "CREATE SERVER films_server FOREIGN DATA WRAPPER postgres_fdw;",
			kind:       KindServer,
			objectName: "films_server",
			confidence: ConfidenceUnknown,
		},
		{
			name:       "User mapping goes to the aggregate bucket",
			input:      "CREATE USER MAPPING FOR app SERVER films_server OPTIONS (user 'app');",
			kind:       KindUserMapping,
			confidence: ConfidenceUnknown,
		},
		{
			name:       "Publication",
			input:      "CREATE PUBLICATION pub1 FOR ALL TABLES;",
			kind:       KindPublication,
			objectName: "pub1",
			confidence: ConfidenceUnknown,
		},
		{
			name:       "Subscription",
			input:      "CREATE SUBSCRIPTION sub1 CONNECTION 'host=src' PUBLICATION pub1;",
			kind:       KindSubscription,
			objectName: "sub1",
			confidence: ConfidenceUnknown,
		},
		{
			name:       "Owner change groups under ownerships",
			input:      "ALTER TABLE public.t1 OWNER TO app;",
			kind:       KindOwnership,
			confidence: ConfidenceUnknown,
		},
		{
			name:       "Grant on qualified table",
			input:      "GRANT SELECT ON TABLE public.t1 TO reporting;",
			kind:       KindACL,
			schema:     "public",
			objectName: "t1",
			confidence: ConfidenceExplicit,
		},
		{
			name:       "Revoke on schema",
			input:      "REVOKE ALL ON SCHEMA public FROM PUBLIC;",
			kind:       KindACL,
			objectName: "public",
			confidence: ConfidenceUnknown,
		},
		{
			name:       "Comment on qualified object",
			input:      "COMMENT ON TABLE public.t1 IS 'accounts';",
			kind:       KindComment,
			schema:     "public",
			objectName: "t1",
			confidence: ConfidenceExplicit,
		},
		{
			name:       "Comment on column attributes to the table",
			input:      "COMMENT ON COLUMN public.t1.id IS 'surrogate key';",
			kind:       KindComment,
			schema:     "public",
			objectName: "t1",
			confidence: ConfidenceExplicit,
		},
		{
			name:       "Comment on extension",
			input:      "COMMENT ON EXTENSION pg_trgm IS 'trigram search';",
			kind:       KindComment,
			objectName: "pg_trgm",
			confidence: ConfidenceUnknown,
		},
		{
			name:       "Leading comments are skipped when matching",
			input:      "--\n-- Name: t1; Type: TABLE; Schema: public\n--\nCREATE TABLE public.t1 (id integer);",
			kind:       KindTable,
			schema:     "public",
			objectName: "t1",
			confidence: ConfidenceExplicit,
		},
		{
			name:       "Unrecognized statement",
			input:      "SELECT pg_catalog.set_config('search_path', '', false);",
			kind:       KindOther,
			confidence: ConfidenceUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(t, tt.input)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.schema, got.Schema)
			assert.Equal(t, tt.objectName, got.Name)
			assert.Equal(t, tt.confidence, got.Confidence)
		})
	}
}

func TestClassifier_OwnerReferences(t *testing.T) {
	t.Run("sequence owned by qualified table", func(t *testing.T) {
		got := classify(t, "ALTER SEQUENCE t1_id_seq OWNED BY public.t1.id;")
		assert.Equal(t, KindSequence, got.Kind)
		assert.Equal(t, "t1_id_seq", got.Name)
		assert.Empty(t, got.Schema)
		assert.Equal(t, "public", got.OwnerSchema)
		assert.Equal(t, "t1", got.OwnerName)
	})

	t.Run("sequence owned by unqualified table", func(t *testing.T) {
		got := classify(t, "ALTER SEQUENCE t1_id_seq OWNED BY t1.id;")
		assert.Equal(t, KindSequence, got.Kind)
		assert.Empty(t, got.OwnerSchema)
		assert.Equal(t, "t1", got.OwnerName)
	})

	t.Run("index records its target table", func(t *testing.T) {
		got := classify(t, "CREATE INDEX i1 ON t1 (id);")
		assert.Equal(t, KindIndex, got.Kind)
		assert.Empty(t, got.Schema)
		assert.Equal(t, "t1", got.OwnerName)
	})
}

func TestObjectKind_Dir(t *testing.T) {
	assert.Equal(t, "table", KindTable.Dir())
	assert.Equal(t, "collation", KindCollation.Dir())
	assert.Equal(t, "row_level_security", KindRowSecurity.Dir())
	assert.Equal(t, "event_trigger", KindEventTrigger.Dir())
	assert.Equal(t, "other", KindOther.Dir())
	assert.Equal(t, "other", ObjectKind("bogus").Dir())
}
