package core_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/citeclean/pkg/core"
)

// lineExtractor treats every non-blank line as one entry key.
type lineExtractor struct{}

func (lineExtractor) Extract(text string) ([]core.Entry, error) {
	var entries []core.Entry
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "!" {
			return nil, &core.ParseError{Line: i + 1, Column: 1, Msg: "bang"}
		}
		entries = append(entries, core.Entry{Type: "misc", Key: line, Line: i + 1, Column: 1})
	}
	return entries, nil
}

// keyLocator emits one diagnostic per unused key, without positions.
type keyLocator struct{}

func (keyLocator) Locate(doc core.Document, unused core.KeySet) []core.Diagnostic {
	var diags []core.Diagnostic
	for _, k := range unused {
		diags = append(diags, core.Diagnostic{Path: doc.Path, Key: k, Severity: core.SeverityWarning})
	}
	return diags
}

func newService(repo core.SourceRepository, policy core.ReadPolicy) *core.Service {
	return core.NewService(lineExtractor{}, repo, keyLocator{}, core.Config{ReadPolicy: policy})
}

func TestService_Detect(t *testing.T) {
	repo := NewMockRepository(map[string]string{
		"intro.tex":  `as shown in \cite{alpha}`,
		"method.tex": `\citep{gamma}`,
	})
	service := newService(repo, core.ReadPolicyAbort)

	report, err := service.Detect(context.TODO(), core.Document{
		Path: "refs.bib",
		Text: "alpha\nbeta\ngamma\ndelta\n",
	})
	require.NoError(t, err)

	assert.Equal(t, "refs.bib", report.Document)
	assert.Equal(t, core.KeySet{"alpha", "beta", "gamma", "delta"}, report.Keys)
	assert.Equal(t, core.KeySet{"beta", "delta"}, report.Unused)
	assert.Equal(t, []string{"intro.tex", "method.tex"}, report.Scanned)
	require.Len(t, report.Diagnostics, 2)
	assert.Equal(t, "beta", report.Diagnostics[0].Key)
	assert.Empty(t, report.Skipped)
}

func TestService_Detect_UnsupportedDocument(t *testing.T) {
	repo := NewMockRepository(nil)
	service := newService(repo, core.ReadPolicyAbort)

	_, err := service.Detect(context.TODO(), core.Document{Path: "main.tex", Text: "alpha"})
	require.ErrorIs(t, err, core.ErrUnsupportedDocument)
	assert.Equal(t, "Only .bib files are supported", err.Error())
	assert.Zero(t, repo.listCalls.Load())
}

func TestService_Detect_UppercaseExtension(t *testing.T) {
	service := newService(NewMockRepository(nil), core.ReadPolicyAbort)

	report, err := service.Detect(context.TODO(), core.Document{Path: "REFS.BIB", Text: "alpha"})
	require.NoError(t, err)
	assert.Equal(t, core.KeySet{"alpha"}, report.Unused)
}

func TestService_Detect_ParseError(t *testing.T) {
	repo := NewMockRepository(map[string]string{"main.tex": "alpha"})
	service := newService(repo, core.ReadPolicyAbort)

	report, err := service.Detect(context.TODO(), core.Document{Path: "refs.bib", Text: "alpha\n!\n"})
	require.Error(t, err)
	assert.Nil(t, report, "no partial report on parse failure")

	var pe *core.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "refs.bib", pe.Path)
	assert.Equal(t, 2, pe.Line)
	assert.Contains(t, err.Error(), "refs.bib:2:1: bang")
	assert.Zero(t, repo.readCalls.Load())
}

func TestService_Detect_EmptyDocument(t *testing.T) {
	repo := NewMockRepository(map[string]string{"main.tex": "alpha"})
	service := newService(repo, core.ReadPolicyAbort)

	report, err := service.Detect(context.TODO(), core.Document{Path: "refs.bib", Text: ""})
	require.NoError(t, err)
	assert.Empty(t, report.Keys)
	assert.Empty(t, report.Unused)
	assert.Empty(t, report.Diagnostics)
	assert.Zero(t, repo.listCalls.Load(), "empty key set short-circuits discovery")
}

func TestService_Detect_ReadFailure(t *testing.T) {
	denied := errors.New("permission denied")

	t.Run("abort", func(t *testing.T) {
		repo := NewMockRepository(map[string]string{"ok.tex": "alpha"})
		repo.Fail("broken.tex", denied)
		service := newService(repo, core.ReadPolicyAbort)

		_, err := service.Detect(context.TODO(), core.Document{Path: "refs.bib", Text: "alpha\nbeta"})
		var ioErr *core.IOError
		require.True(t, errors.As(err, &ioErr))
		assert.Equal(t, "broken.tex", ioErr.Path)
	})

	t.Run("skip", func(t *testing.T) {
		repo := NewMockRepository(map[string]string{"ok.tex": "alpha"})
		repo.Fail("broken.tex", denied)
		service := newService(repo, core.ReadPolicySkip)

		report, err := service.Detect(context.TODO(), core.Document{Path: "refs.bib", Text: "alpha\nbeta"})
		require.NoError(t, err)
		assert.Equal(t, core.KeySet{"beta"}, report.Unused)
		require.Len(t, report.Skipped, 1)
		assert.Equal(t, "broken.tex", report.Skipped[0].Path)
	})
}

func TestService_State(t *testing.T) {
	service := newService(NewMockRepository(nil), core.ReadPolicySkip)

	_, err := service.Detect(context.TODO(), core.Document{Path: "refs.bib", Text: "alpha"})
	require.NoError(t, err)

	state, ok := service.State().(core.ServiceState)
	require.True(t, ok)
	assert.Equal(t, 1, state.Runs)
	assert.NotNil(t, state.LastRun)
	assert.Equal(t, core.ReadPolicySkip, state.ReadPolicy)
	assert.Equal(t, "repository", state.RepositoryType)
	assert.Equal(t, "service", service.ComponentType())
}
