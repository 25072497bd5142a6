package extract

// Kind classifies an extracted entity
type Kind string

const (
	KindFile        Kind = "File"
	KindLibrary     Kind = "Library"
	KindImport      Kind = "Import"
	KindClass       Kind = "Class"
	KindMethod      Kind = "Method"
	KindFunction    Kind = "Function"
	KindParameter   Kind = "Parameter"
	KindVariable    Kind = "Variable"
	KindAPIEndpoint Kind = "API_Endpoint"
	KindHTTPMethod  Kind = "HTTP_Method"
	KindWebApp      Kind = "WebApp"
)

// Kinds lists every entity kind, in constraint-creation order
var Kinds = []Kind{
	KindFile, KindLibrary, KindImport, KindClass, KindMethod, KindFunction,
	KindParameter, KindVariable, KindAPIEndpoint, KindHTTPMethod, KindWebApp,
}

// Relation classifies a directed edge between two bare names
type Relation string

const (
	RelImports       Relation = "IMPORTS"
	RelProvides      Relation = "PROVIDES"
	RelContains      Relation = "CONTAINS"
	RelInheritsFrom  Relation = "INHERITS_FROM"
	RelDefines       Relation = "DEFINES"
	RelAccepts       Relation = "ACCEPTS"
	RelExposes       Relation = "EXPOSES"
	RelSupports      Relation = "SUPPORTS"
	RelDecoratedBy   Relation = "DECORATED_BY"
	RelCalls         Relation = "CALLS"
	RelUsesInput     Relation = "USES_INPUT"
	RelMakesRequest  Relation = "MAKES_REQUEST"
	RelDefinesVar    Relation = "DEFINES_VAR"
	RelFlowTo        Relation = "FLOW_TO"
	RelReturnsFields Relation = "RETURNS_FIELDS"
	RelReturnsFrom   Relation = "RETURNS_FROM"
)

// Entity is a typed node candidate keyed by (Kind, Name, Scope).
// Scope is the enclosing container: a file path for top-level declarations,
// a class name for methods, a function name for parameters and variables,
// a route string for HTTP-method entities.
type Entity struct {
	Kind  Kind
	Name  string
	Scope string
}

// Relationship is a directed edge candidate between two bare names.
// Endpoint typing is deferred to load time.
type Relationship struct {
	Source   string
	Relation Relation
	Target   string
}

// EntitySet de-duplicates entities while preserving insertion order.
// Set semantics are the data model: repeated occurrences collapse.
type EntitySet struct {
	seen  map[Entity]struct{}
	items []Entity
}

func NewEntitySet() *EntitySet {
	return &EntitySet{seen: make(map[Entity]struct{})}
}

func (s *EntitySet) Add(e Entity) {
	if _, ok := s.seen[e]; ok {
		return
	}
	s.seen[e] = struct{}{}
	s.items = append(s.items, e)
}

// AddAll merges another set into this one
func (s *EntitySet) AddAll(other *EntitySet) {
	for _, e := range other.items {
		s.Add(e)
	}
}

func (s *EntitySet) Contains(e Entity) bool {
	_, ok := s.seen[e]
	return ok
}

func (s *EntitySet) Len() int { return len(s.items) }

// Items returns entities in insertion order; callers must not mutate
func (s *EntitySet) Items() []Entity { return s.items }

// RelationshipSet de-duplicates relationship tuples, insertion-ordered
type RelationshipSet struct {
	seen  map[Relationship]struct{}
	items []Relationship
}

func NewRelationshipSet() *RelationshipSet {
	return &RelationshipSet{seen: make(map[Relationship]struct{})}
}

func (s *RelationshipSet) Add(r Relationship) {
	if _, ok := s.seen[r]; ok {
		return
	}
	s.seen[r] = struct{}{}
	s.items = append(s.items, r)
}

func (s *RelationshipSet) AddAll(other *RelationshipSet) {
	for _, r := range other.items {
		s.Add(r)
	}
}

func (s *RelationshipSet) Contains(r Relationship) bool {
	_, ok := s.seen[r]
	return ok
}

func (s *RelationshipSet) Len() int { return len(s.items) }

func (s *RelationshipSet) Items() []Relationship { return s.items }

// Bundle is the complete result of extracting one file or one repository:
// entities, structural relationships, call edges, data-flow edges, and
// endpoint edges (EXPOSES/SUPPORTS). Immutable once returned by the
// aggregator; the loader is a pure consumer.
type Bundle struct {
	Entities      *EntitySet
	Relationships *RelationshipSet
	Calls         *RelationshipSet
	DataFlows     *RelationshipSet
	Endpoints     *RelationshipSet
}

func NewBundle() *Bundle {
	return &Bundle{
		Entities:      NewEntitySet(),
		Relationships: NewRelationshipSet(),
		Calls:         NewRelationshipSet(),
		DataFlows:     NewRelationshipSet(),
		Endpoints:     NewRelationshipSet(),
	}
}

// Merge unions another bundle into this one (set union per record kind)
func (b *Bundle) Merge(other *Bundle) {
	b.Entities.AddAll(other.Entities)
	b.Relationships.AddAll(other.Relationships)
	b.Calls.AddAll(other.Calls)
	b.DataFlows.AddAll(other.DataFlows)
	b.Endpoints.AddAll(other.Endpoints)
}

// Empty reports whether extraction produced no entities and no structural
// relationships — the terminal nothing-to-load condition
func (b *Bundle) Empty() bool {
	return b.Entities.Len() == 0 && b.Relationships.Len() == 0
}

// KindIndex builds a name→kind lookup from the entity set. The first entity
// registered under a name wins, matching first-match disambiguation at load
// time.
func (b *Bundle) KindIndex() map[string]Kind {
	idx := make(map[string]Kind, b.Entities.Len())
	for _, e := range b.Entities.Items() {
		if _, ok := idx[e.Name]; !ok {
			idx[e.Name] = e.Kind
		}
	}
	return idx
}
