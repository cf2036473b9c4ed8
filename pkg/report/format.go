package report

import (
	"fmt"
	"strings"

	"github.com/aretw0/canopy/pkg/domain"
)

// labelWidth pads every label to the same column so values line up.
const labelWidth = 12

func scalarLabel(f domain.ScalarField) string {
	switch f {
	case domain.FieldName:
		return "Project name"
	case domain.FieldDirectory:
		return "Project dir"
	default:
		return string(f)
	}
}

func identityLabel(f domain.IdentityField) string {
	switch f {
	case domain.FieldInstanceID:
		return "Project id"
	case domain.FieldTypeID:
		return "Project type"
	default:
		return string(f)
	}
}

// Format renders one project's report block: one tab-indented line per
// successful field, in request order, scalars before identities, closed by
// a single blank line. Fields that did not come back FieldOK are omitted,
// not blanked. A report with no successful field renders as the empty
// string and must produce no output at all.
func Format(rep *domain.ProjectReport) string {
	var b strings.Builder

	for i, f := range rep.ScalarFields {
		if i >= len(rep.Scalars) || rep.Scalars[i].Status != domain.FieldOK {
			continue
		}
		writeLine(&b, scalarLabel(f), rep.Scalars[i].Value)
	}
	for i, f := range rep.IdentityFields {
		if i >= len(rep.Identities) || rep.Identities[i].Status != domain.FieldOK {
			continue
		}
		writeLine(&b, identityLabel(f), rep.Identities[i].Value.String())
	}

	if b.Len() == 0 {
		return ""
	}
	b.WriteString("\n")
	return b.String()
}

func writeLine(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "\t%-*s: %s\n", labelWidth, label, value)
}

// Lines counts the report lines in a formatted block, excluding the
// closing blank line.
func Lines(text string) int {
	if text == "" {
		return 0
	}
	return strings.Count(text, "\n") - 1
}
