package report_test

import (
	"testing"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/report"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func fullReport() *domain.ProjectReport {
	return &domain.ProjectReport{
		ScalarFields: domain.DefaultScalarFields(),
		Scalars: []domain.ScalarResult{
			{Value: "App", Status: domain.FieldOK},
			{Value: "/src/App", Status: domain.FieldOK},
		},
		IdentityFields: domain.DefaultIdentityFields(),
		Identities: []domain.IdentityResult{
			{Value: uuid.MustParse("11111111-1111-1111-1111-111111111111"), Status: domain.FieldOK},
			{Value: uuid.MustParse("22222222-2222-2222-2222-222222222222"), Status: domain.FieldOK},
		},
	}
}

func TestFormat_AllFieldsSucceed(t *testing.T) {
	want := "\tProject name: App\n" +
		"\tProject dir : /src/App\n" +
		"\tProject id  : 11111111-1111-1111-1111-111111111111\n" +
		"\tProject type: 22222222-2222-2222-2222-222222222222\n" +
		"\n"

	assert.Equal(t, want, report.Format(fullReport()))
}

func TestFormat_OmitsFailedFields(t *testing.T) {
	rep := fullReport()
	rep.Scalars[1].Status = domain.FieldUnsupported
	rep.Identities[0].Status = domain.FieldUnsupported

	want := "\tProject name: App\n" +
		"\tProject type: 22222222-2222-2222-2222-222222222222\n" +
		"\n"

	assert.Equal(t, want, report.Format(rep))
}

func TestFormat_OnlyNameSucceeds(t *testing.T) {
	rep := &domain.ProjectReport{
		ScalarFields: domain.DefaultScalarFields(),
		Scalars: []domain.ScalarResult{
			{Value: "App", Status: domain.FieldOK},
			{Status: domain.FieldUnsupported},
		},
		IdentityFields: domain.DefaultIdentityFields(),
		Identities:     domain.UnsupportedIdentities(domain.DefaultIdentityFields()),
	}

	assert.Equal(t, "\tProject name: App\n\n", report.Format(rep))
}

func TestFormat_NothingSucceeds(t *testing.T) {
	rep := &domain.ProjectReport{
		ScalarFields:   domain.DefaultScalarFields(),
		Scalars:        domain.UnsupportedScalars(domain.DefaultScalarFields()),
		IdentityFields: domain.DefaultIdentityFields(),
		Identities:     domain.UnsupportedIdentities(domain.DefaultIdentityFields()),
	}

	assert.Equal(t, "", report.Format(rep), "no successful fields means no output at all")
}

func TestFormat_SkippedReport(t *testing.T) {
	rep := &domain.ProjectReport{Skipped: true}
	assert.Equal(t, "", report.Format(rep))
}

func TestLines(t *testing.T) {
	assert.Equal(t, 0, report.Lines(""))
	assert.Equal(t, 4, report.Lines(report.Format(fullReport())))
	assert.Equal(t, 1, report.Lines("\tProject name: App\n\n"))
}
