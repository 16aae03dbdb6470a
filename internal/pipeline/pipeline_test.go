package pipeline

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"nrtrewriter/internal/annotator"
	"nrtrewriter/internal/extractor"
	"nrtrewriter/internal/semantic"
	"nrtrewriter/internal/syntax"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memProgram is a Program over sources held in memory.
type memProgram struct {
	docs        []Document
	oracle      *semantic.Workspace
	noModel     map[string]bool
	solutionErr error
}

func newProgram(t *testing.T, files map[string]string) *memProgram {
	t.Helper()
	ext, err := extractor.NewExtractor("csharp")
	require.NoError(t, err)

	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	prog := &memProgram{noModel: map[string]bool{}}
	var units []*syntax.Unit
	for _, p := range paths {
		u, err := ext.Extract(context.Background(), p, []byte(files[p]))
		require.NoError(t, err)
		prog.docs = append(prog.docs, Document{Path: p, Unit: u})
		units = append(units, u)
	}
	prog.oracle = semantic.NewWorkspace(units)
	return prog
}

func (p *memProgram) Documents(context.Context) ([]Document, error) {
	return p.docs, nil
}

func (p *memProgram) ModelFor(u *syntax.Unit) (semantic.Model, error) {
	if p.noModel[u.Path] {
		return nil, nil
	}
	return p.oracle.ModelFor(u), nil
}

func (p *memProgram) Solution(units []*syntax.Unit) (semantic.Solution, error) {
	if p.solutionErr != nil {
		return nil, p.solutionErr
	}
	return semantic.NewWorkspace(units), nil
}

type memWriter struct {
	written map[string]string
	order   []string
	failOn  string
}

func newWriter() *memWriter {
	return &memWriter{written: map[string]string{}}
}

func (w *memWriter) Write(_ context.Context, original, updated *syntax.Unit) error {
	if updated.Path == w.failOn {
		return errors.New("disk full")
	}
	w.written[updated.Path] = string(syntax.Render(original, updated))
	w.order = append(w.order, updated.Path)
	return nil
}

type failingPass struct {
	path string
}

func (f failingPass) Name() string { return "failing" }

func (f failingPass) Annotate(_ context.Context, u *syntax.Unit, _ semantic.Model) (*syntax.Unit, error) {
	if u.Path == f.path {
		return nil, errors.New("broken tree")
	}
	return u, nil
}

func run(t *testing.T, prog Program, opts Options) (*Result, *memWriter) {
	t.Helper()
	w := newWriter()
	if opts.Writer == nil {
		opts.Writer = w
	}
	res, err := New(opts).Run(context.Background(), prog)
	require.NoError(t, err)
	return res, w
}

const holderSource = `class Holder
{
    private string s;
    public Holder() { }
    public string Maybe() { return null; }
    public void Run()
    {
        var x = Maybe();
        string name = null;
        object o = (string) null;
    }
}
`

func TestRun_DeclarationScenarios(t *testing.T) {
	prog := newProgram(t, map[string]string{"Holder.cs": holderSource})
	res, w := run(t, prog, Options{Workers: 2})

	require.Len(t, res.Changes, 1)
	out := w.written["Holder.cs"]
	assert.Contains(t, out, "private string? s;")
	assert.Contains(t, out, "public string? Maybe()")
	assert.Contains(t, out, "var x = Maybe();")
	assert.Contains(t, out, "string? name = null;")
	assert.Contains(t, out, "object? o = (string?) null;")
	assert.NotContains(t, out, "void?")

	assert.Equal(t, 1, res.Edits["field"])
	assert.Equal(t, 1, res.Edits["method-return"])
	assert.Equal(t, 2, res.Edits["local-declaration"])
	assert.Equal(t, 1, res.Edits["cast"])
	assert.Equal(t, 5, res.TotalEdits())
	assert.Equal(t, 1, res.Written)
}

func TestRun_CallSiteParameterIsStable(t *testing.T) {
	src := `class Greeter
{
    public string Greet(string name) { return "hi"; }
    public void Run() { Greet(null); }
}
`
	res, w := run(t, newProgram(t, map[string]string{"Greeter.cs": src}), Options{})
	require.Len(t, res.Changes, 1)
	out := w.written["Greeter.cs"]
	assert.Contains(t, out, "public string Greet(string? name)")

	again, _ := run(t, newProgram(t, map[string]string{"Greeter.cs": out}), Options{})
	assert.Empty(t, again.Changes)
}

func TestRun_CallSiteReachesParamsArray(t *testing.T) {
	src := `class Logger
{
    public void Log(params string[] parts) { }
    public void Run() { Log(null); }
}
`
	res, w := run(t, newProgram(t, map[string]string{"Logger.cs": src}), Options{})
	require.Len(t, res.Changes, 1)
	assert.Contains(t, w.written["Logger.cs"], "public void Log(params string[]? parts)")
	assert.Equal(t, 1, res.Edits["call-site"])
}

func TestRun_ConditionalCallCanBeNull(t *testing.T) {
	src := `class Box
{
    public string Name() { return "box"; }
    public void Run(Box b)
    {
        string s = b?.Name();
        string t = b.Name();
    }
}
`
	res, w := run(t, newProgram(t, map[string]string{"Box.cs": src}), Options{})
	require.Len(t, res.Changes, 1)
	out := w.written["Box.cs"]
	assert.Contains(t, out, "string? s = b?.Name();")
	assert.Contains(t, out, "string t = b.Name();")
	assert.Equal(t, 1, res.TotalEdits())
}

func TestRun_InheritanceAcrossFiles(t *testing.T) {
	prog := newProgram(t, map[string]string{
		"IRepo.cs": "interface IRepo\n{\n    string Find(string key);\n}\n",
		"Repo.cs":  "class Repo : IRepo\n{\n    public string Find(string key) { return null; }\n}\n",
	})
	res, w := run(t, prog, Options{})

	assert.Contains(t, w.written["Repo.cs"], "public string? Find(string key)")
	assert.Contains(t, w.written["IRepo.cs"], "string? Find(string key);")
	assert.Equal(t, 1, res.Edits[InheritancePass])
	assert.Equal(t, 1, res.Inheritance.Families)
}

func TestRun_DryRunDoesNotWrite(t *testing.T) {
	prog := newProgram(t, map[string]string{"Holder.cs": holderSource})
	res, w := run(t, prog, Options{DryRun: true})

	assert.NotEmpty(t, res.Changes)
	assert.Empty(t, w.written)
	assert.Zero(t, res.Written)
}

func TestRun_SkipsFilesWithoutContext(t *testing.T) {
	prog := newProgram(t, map[string]string{
		"Holder.cs": holderSource,
		"Other.cs":  "class Other { string f; }",
	})
	prog.docs = append(prog.docs, Document{Path: "Broken.cs"})
	prog.noModel["Other.cs"] = true

	res, w := run(t, prog, Options{})
	require.Len(t, res.Skipped, 2)
	for _, s := range res.Skipped {
		assert.ErrorIs(t, s.Err, ErrMissingSemanticContext)
		assert.True(t, IsSkippable(s.Err))
	}
	assert.Contains(t, w.written, "Holder.cs")
	assert.NotContains(t, w.written, "Other.cs")
}

func TestRun_FailingPassAbortsOnlyThatFile(t *testing.T) {
	prog := newProgram(t, map[string]string{
		"Bad.cs":    "class Bad { string f; }",
		"Holder.cs": holderSource,
	})
	passes := append([]annotator.Annotator{failingPass{path: "Bad.cs"}}, annotator.Default(annotator.Options{})...)
	res, w := run(t, prog, Options{Annotators: passes, Workers: 4})

	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "Bad.cs", res.Skipped[0].Path)
	assert.False(t, IsSkippable(res.Skipped[0].Err))
	assert.Contains(t, w.written, "Holder.cs")
	assert.NotContains(t, w.written, "Bad.cs")
}

func TestRun_WriteFailureKeepsEarlierWrites(t *testing.T) {
	prog := newProgram(t, map[string]string{
		"A.cs": "class A { string f; }",
		"B.cs": "class B { string g; }",
		"C.cs": "class C { string h; }",
	})
	w := newWriter()
	w.failOn = "B.cs"

	res, err := New(Options{Writer: w}).Run(context.Background(), prog)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWriteFailure)
	var we *WriteError
	require.True(t, errors.As(err, &we))
	assert.Equal(t, "B.cs", we.Path)
	assert.True(t, strings.Contains(err.Error(), "disk full"))

	require.NotNil(t, res)
	assert.Len(t, res.Changes, 3)
	assert.Equal(t, 1, res.Written)
	assert.Equal(t, []string{"A.cs"}, w.order)
}

func TestRun_SolutionFailureAbortsRun(t *testing.T) {
	prog := newProgram(t, map[string]string{"A.cs": "class A { string f; }"})
	boom := errors.New("no solution")
	prog.solutionErr = boom

	w := newWriter()
	_, err := New(Options{Writer: w}).Run(context.Background(), prog)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, w.written)
}

func TestRun_CanceledContext(t *testing.T) {
	prog := newProgram(t, map[string]string{"A.cs": "class A { string f; }"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Options{Writer: newWriter()}).Run(ctx, prog)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_UnchangedProgram(t *testing.T) {
	prog := newProgram(t, map[string]string{"A.cs": "class A { int n; string s = \"x\"; }"})
	res, w := run(t, prog, Options{})
	assert.Empty(t, res.Changes)
	assert.Empty(t, w.written)
	assert.Zero(t, res.TotalEdits())
}
