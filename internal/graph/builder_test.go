package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/auditgraph/internal/syntax"
	"github.com/standardbeagle/auditgraph/internal/types"
)

func buildGraph(t *testing.T, language string, files ...types.FileContent) *types.CallGraph {
	t.Helper()
	builder, err := NewBuilder(syntax.NewEngine(), language)
	require.NoError(t, err)
	g, err := builder.GenerateCallGraph(files)
	require.NoError(t, err)
	return g
}

func findEdge(g *types.CallGraph, from, to string) *types.GraphEdge {
	for i := range g.Edges {
		if g.Edges[i].From == from && g.Edges[i].To == to {
			return &g.Edges[i]
		}
	}
	return nil
}

func TestNewBuilderUnsupportedLanguage(t *testing.T) {
	_, err := NewBuilder(syntax.NewEngine(), "python")
	assert.Error(t, err)
}

func TestCSharpSiblingCall(t *testing.T) {
	src := `class C {
    public void A() { B(); }
    public void B() { }
}
`
	g := buildGraph(t, "csharp", types.FileContent{Path: "c.cs", Content: src})

	require.Len(t, g.Nodes, 2)
	require.Len(t, g.Edges, 1)
	assert.Equal(t, "C.A()", g.Edges[0].From)
	assert.Equal(t, "C.B()", g.Edges[0].To)
	assert.Equal(t, types.EdgeInternal, g.Edges[0].Kind)
}

func TestCSharpBaseCallResolvesToParent(t *testing.T) {
	src := `class Base {
    protected void Helper() { }
}
class Derived : Base {
    public void Run() { base.Helper(); }
}
`
	g := buildGraph(t, "csharp", types.FileContent{Path: "d.cs", Content: src})

	require.Len(t, g.Nodes, 2)
	edge := findEdge(g, "Derived.Run()", "Base.Helper()")
	require.NotNil(t, edge)
	assert.Equal(t, types.EdgeInternal, edge.Kind)
}

func TestCSharpSelfCallIsExternal(t *testing.T) {
	src := `class C {
    public void A() { this.B(); }
    public void B() { }
}
`
	g := buildGraph(t, "csharp", types.FileContent{Path: "c.cs", Content: src})

	edge := findEdge(g, "C.A()", "C.B()")
	require.NotNil(t, edge)
	assert.Equal(t, types.EdgeExternal, edge.Kind)
}

func TestCSharpLibraryInternalMemberCall(t *testing.T) {
	src := `static class Util {
    internal static void Log() { }
}
class App {
    public void Run() { Util.Log(); }
}
`
	g := buildGraph(t, "csharp", types.FileContent{Path: "u.cs", Content: src})

	edge := findEdge(g, "App.Run()", "Util.Log()")
	require.NotNil(t, edge)
	// Internal members of an associated static library stay inside the
	// caller's execution context.
	assert.Equal(t, types.EdgeInternal, edge.Kind)
}

func TestCSharpMemberCallOnInstanceIsExternal(t *testing.T) {
	src := `class Service {
    public void Do() { }
}
class App {
    public void Run(Service svc) { svc.Do(); }
}
`
	g := buildGraph(t, "csharp", types.FileContent{Path: "s.cs", Content: src})

	edge := findEdge(g, "App.Run(Service svc)", "Service.Do()")
	require.NotNil(t, edge)
	assert.Equal(t, types.EdgeExternal, edge.Kind)
}

func TestCSharpCompositeModifierVisibility(t *testing.T) {
	src := `class C {
    private protected void M() { }
    protected internal void N() { }
}
`
	// Composite modifiers must classify the same way on every run.
	for i := 0; i < 50; i++ {
		g := buildGraph(t, "csharp", types.FileContent{Path: "c.cs", Content: src})
		require.Len(t, g.Nodes, 2)

		byID := make(map[string]types.Visibility)
		for _, n := range g.Nodes {
			byID[n.ID] = n.Visibility
		}
		assert.Equal(t, types.VisibilityPrivate, byID["C.M()"])
		assert.Equal(t, types.VisibilityInternal, byID["C.N()"])
	}
}

func TestCSharpInterfaceMembersAreExternal(t *testing.T) {
	src := `interface IGreeter {
    void Greet();
}
`
	g := buildGraph(t, "csharp", types.FileContent{Path: "i.cs", Content: src})

	require.Len(t, g.Nodes, 1)
	assert.Equal(t, types.VisibilityExternal, g.Nodes[0].Visibility)
}

func TestCSharpBuiltinsDropped(t *testing.T) {
	src := `class C {
    public void A() { var s = x.ToString(); B(); }
    public void B() { }
}
`
	g := buildGraph(t, "csharp", types.FileContent{Path: "c.cs", Content: src})
	require.Len(t, g.Edges, 1)
	assert.Equal(t, "C.B()", g.Edges[0].To)
}

func TestJavaSuperCallResolvesThroughChain(t *testing.T) {
	src := `class GrandParent {
    protected void helper() { }
}
class Parent extends GrandParent {
}
class Child extends Parent {
    public void run() { super.helper(); }
}
`
	g := buildGraph(t, "java", types.FileContent{Path: "c.java", Content: src})

	edge := findEdge(g, "Child.run()", "GrandParent.helper()")
	require.NotNil(t, edge)
	assert.Equal(t, types.EdgeInternal, edge.Kind)
}

func TestRustImplAndTrait(t *testing.T) {
	src := `trait Greeter {
    fn greet(&self);
}

struct Cli;

impl Greeter for Cli {
    fn greet(&self) {
        self.log();
    }
}

impl Cli {
    fn log(&self) {}

    pub fn run(&self) {
        self.greet();
    }
}
`
	g := buildGraph(t, "rust", types.FileContent{Path: "cli.rs", Content: src})

	edge := findEdge(g, "Cli.greet(&self)", "Cli.log(&self)")
	require.NotNil(t, edge)
	assert.Equal(t, types.EdgeExternal, edge.Kind)

	edge = findEdge(g, "Cli.run(&self)", "Cli.greet(&self)")
	require.NotNil(t, edge)
}

func TestRustMacroContentIgnored(t *testing.T) {
	src := `struct S;

impl S {
    pub fn run(&self) {
        println!("{}", helper());
        self.step();
    }

    fn step(&self) {}
}

fn helper() -> i32 { 0 }
`
	g := buildGraph(t, "rust", types.FileContent{Path: "s.rs", Content: src})

	// helper() appears only inside the macro invocation, so the only
	// edge is the self call.
	require.Len(t, g.Edges, 1)
	assert.Equal(t, "S.step(&self)", g.Edges[0].To)
}

func TestGoReceiverMethods(t *testing.T) {
	src := `package p

type Server struct{}

func (s *Server) Run() {
	s.handle()
	helper()
}

func (s *Server) handle() {}

func helper() {}
`
	g := buildGraph(t, "go", types.FileContent{Path: "server.go", Content: src})

	require.Len(t, g.Nodes, 3)

	selfEdge := findEdge(g, "Server.Run()", "Server.handle()")
	require.NotNil(t, selfEdge)
	assert.Equal(t, types.EdgeExternal, selfEdge.Kind)

	bareEdge := findEdge(g, "Server.Run()", "helper()")
	require.NotNil(t, bareEdge)
	assert.Equal(t, types.EdgeInternal, bareEdge.Kind)
}

func TestGoVisibilityFromCapitalization(t *testing.T) {
	src := `package p

func Exported() {}

func unexported() {}
`
	g := buildGraph(t, "go", types.FileContent{Path: "v.go", Content: src})

	byID := make(map[string]types.GraphNode)
	for _, n := range g.Nodes {
		byID[n.ID] = n
	}
	assert.Equal(t, types.VisibilityPublic, byID["Exported()"].Visibility)
	assert.Equal(t, types.VisibilityInternal, byID["unexported()"].Visibility)
}

func TestGenerateCallGraphDeterministic(t *testing.T) {
	files := []types.FileContent{
		{Path: "a.cs", Content: "class A { public void M() { B.N(); } }\n"},
		{Path: "b.cs", Content: "class B { public static void N() { } }\n"},
	}
	builder, err := NewBuilder(syntax.NewEngine(), "csharp")
	require.NoError(t, err)

	first, err := builder.GenerateCallGraph(files)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := builder.GenerateCallGraph(files)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestGenerateCallGraphCrossFile(t *testing.T) {
	g := buildGraph(t, "csharp",
		types.FileContent{Path: "a.cs", Content: "class A { public void M() { B.N(); } }\n"},
		types.FileContent{Path: "b.cs", Content: "class B { public static void N() { } }\n"},
	)

	edge := findEdge(g, "A.M()", "B.N()")
	require.NotNil(t, edge)
}

func TestDuplicateNodeIDKeepsFirst(t *testing.T) {
	g := buildGraph(t, "csharp",
		types.FileContent{Path: "a.cs", Content: "class C { public void M() { } }\n"},
		types.FileContent{Path: "b.cs", Content: "class C { public void M() { } }\n"},
	)

	require.Len(t, g.Nodes, 1)
	assert.Equal(t, "a.cs", g.Nodes[0].File)
}
