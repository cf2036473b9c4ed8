package domain

import "github.com/google/uuid"

// NodeHandle is an opaque reference to a project node. Handles are minted by
// the workspace provider and carry no meaning of their own; capabilities are
// discovered by interface assertion at the ports layer.
type NodeHandle any

// ScalarField identifies a string-valued attribute of a project node.
type ScalarField string

const (
	// FieldName is the human-readable display name of the project.
	FieldName ScalarField = "name"
	// FieldDirectory is the absolute path of the project's root directory.
	FieldDirectory ScalarField = "directory"
)

// IdentityField identifies a GUID-valued attribute of a project node.
type IdentityField string

const (
	// FieldInstanceID is the GUID distinguishing this project instance.
	FieldInstanceID IdentityField = "instance_id"
	// FieldTypeID is the GUID of the project's type/flavor.
	FieldTypeID IdentityField = "type_id"
)

// FieldStatus reports whether a single requested field yielded a value.
// Each slot in a batched result carries its own status; one unsupported
// field never poisons its siblings.
type FieldStatus string

const (
	// FieldOK means the value slot is populated and trustworthy.
	FieldOK FieldStatus = "ok"
	// FieldUnsupported means the node does not carry this attribute.
	// The value slot must be ignored.
	FieldUnsupported FieldStatus = "unsupported"
)

// ScalarResult is one slot of a batched scalar attribute query.
type ScalarResult struct {
	Value  string      `json:"value"`
	Status FieldStatus `json:"status"`
}

// IdentityResult is one slot of a batched identity attribute query.
type IdentityResult struct {
	Value  uuid.UUID   `json:"value"`
	Status FieldStatus `json:"status"`
}

// DefaultScalarFields returns the scalar attributes a standard survey pass
// requests, in report order.
func DefaultScalarFields() []ScalarField {
	return []ScalarField{FieldName, FieldDirectory}
}

// DefaultIdentityFields returns the identity attributes a standard survey
// pass requests, in report order.
func DefaultIdentityFields() []IdentityField {
	return []IdentityField{FieldInstanceID, FieldTypeID}
}

// UnsupportedScalars returns a result slice with one FieldUnsupported slot
// per requested field. Used when a whole query faulted and the node's
// remaining fields are treated as absent.
func UnsupportedScalars(fields []ScalarField) []ScalarResult {
	res := make([]ScalarResult, len(fields))
	for i := range res {
		res[i].Status = FieldUnsupported
	}
	return res
}

// UnsupportedIdentities is the identity counterpart of UnsupportedScalars.
func UnsupportedIdentities(fields []IdentityField) []IdentityResult {
	res := make([]IdentityResult, len(fields))
	for i := range res {
		res[i].Status = FieldUnsupported
	}
	return res
}
