// Package presenter provides schema-aware presentation for tapi entities.
// It sits between the resolver/commands and the terminal, using declarative
// YAML schemas to decide which fields a human needs to see and how to
// format them.
package presenter

// EntitySchema describes how an entity wants to be presented.
// Schemas are declarative metadata loaded from embedded YAML files.
type EntitySchema struct {
	Entity   string                  `yaml:"entity"`
	TypeKey  string                  `yaml:"type_key"`
	Identity Identity                `yaml:"identity"`
	Headline map[string]HeadlineSpec `yaml:"headline"`
	Fields   map[string]FieldSpec    `yaml:"fields"`
	Views    ViewSpecs               `yaml:"views"`
}

// Identity identifies the entity's label and ID fields.
type Identity struct {
	Label string `yaml:"label"`
	ID    string `yaml:"id"`
}

// HeadlineSpec defines a headline template, optionally conditional.
type HeadlineSpec struct {
	Template string `yaml:"template"`
}

// FieldSpec describes how a single field should be presented.
type FieldSpec struct {
	Format string            `yaml:"format"`
	Labels map[string]string `yaml:"labels"`
	Prefix string            `yaml:"prefix"`
}

// ViewSpecs declares which fields appear per presentation context.
type ViewSpecs struct {
	List    ListView    `yaml:"list"`
	Compact CompactView `yaml:"compact"`
}

// ListView configures the table/list presentation.
type ListView struct {
	Columns []string `yaml:"columns"`
}

// CompactView configures a minimal inline presentation, used for the
// disambiguation candidate lines.
type CompactView struct {
	Show []string `yaml:"show"`
}
