package loam

// KindProject marks a document as a queryable project node. Documents with
// no kind default to it.
const KindProject = "project"

// KindFolder marks grouping documents that carry no attributes. The survey
// sees them as opaque handles and skips them.
const KindFolder = "folder"

// ProjectMetadata represents the frontmatter header of a Canopy project
// document. It uses "mapstructure" tags to match standard Frontmatter/YAML
// keys.
type ProjectMetadata struct {
	// Kind distinguishes projects from folders. Empty means project.
	Kind string `json:"kind" mapstructure:"kind"`

	Name string `json:"name" mapstructure:"name"`
	Dir  string `json:"dir" mapstructure:"dir"`

	// GUIDs are kept as strings in frontmatter; parsing happens at query
	// time and a malformed value degrades to an unsupported field.
	InstanceID string `json:"instance_id" mapstructure:"instance_id"`
	TypeID     string `json:"type_id" mapstructure:"type_id"`
}
