package report_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/citeclean/pkg/core"
	"github.com/aretw0/citeclean/pkg/report"
)

func sampleReport() *core.Report {
	return &core.Report{
		Document:    "refs.bib",
		Keys:        core.KeySet{"alpha", "beta"},
		Unused:      core.KeySet{"beta"},
		Diagnostics: []core.Diagnostic{warning("refs.bib", 2, 7, "beta")},
		Scanned:     []string{"main.tex"},
	}
}

func TestTextFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&report.TextFormatter{}).Format(&buf, sampleReport()))

	assert.Equal(t,
		"refs.bib:2:7: warning: Unused reference: 'beta'\n"+
			"refs.bib: 1 of 2 references unused (1 manuscript scanned)\n",
		buf.String())
}

func TestTextFormatter_Clean(t *testing.T) {
	rep := &core.Report{Document: "refs.bib", Keys: core.KeySet{"alpha"}, Scanned: []string{"a.tex", "b.tex"}}

	var buf bytes.Buffer
	require.NoError(t, (&report.TextFormatter{}).Format(&buf, rep))
	assert.Equal(t, "refs.bib: all 1 reference used (2 manuscripts scanned)\n", buf.String())

	buf.Reset()
	require.NoError(t, (&report.TextFormatter{Quiet: true}).Format(&buf, rep))
	assert.Empty(t, buf.String())
}

func TestTextFormatter_Skipped(t *testing.T) {
	rep := sampleReport()
	rep.Skipped = []core.Skipped{{Path: "locked.tex", Error: "permission denied"}}

	var buf bytes.Buffer
	require.NoError(t, (&report.TextFormatter{Quiet: true}).Format(&buf, rep))
	assert.Contains(t, buf.String(), "locked.tex: skipped: permission denied\n")
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&report.JSONFormatter{}).Format(&buf, sampleReport()))

	var got core.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, *sampleReport(), got)
	assert.NotContains(t, buf.String(), "skipped")
}

func TestJSONFormatter_EmptyListsNotNull(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&report.JSONFormatter{}).Format(&buf, &core.Report{Document: "refs.bib"}))

	assert.Contains(t, buf.String(), `"unused":[]`)
	assert.Contains(t, buf.String(), `"diagnostics":[]`)
	assert.NotContains(t, buf.String(), "null")
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&report.YAMLFormatter{}).Format(&buf, sampleReport()))

	var got core.Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, *sampleReport(), got)
	assert.Contains(t, buf.String(), "unused:\n  - beta\n")
}

func TestCSVFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&report.CSVFormatter{}).Format(&buf, sampleReport()))

	assert.Equal(t,
		"path,line,column,end_line,end_column,severity,key,message\n"+
			"refs.bib,2,7,2,11,warning,beta,Unused reference: 'beta'\n",
		buf.String())
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"text", "JSON", " yaml ", "csv", ""} {
		f, err := report.Lookup(name)
		require.NoError(t, err, name)
		assert.NotNil(t, f)
	}

	_, err := report.Lookup("xml")
	assert.ErrorContains(t, err, `unknown output format "xml"`)
	assert.Equal(t, []string{"csv", "json", "text", "yaml"}, report.Names())
}
