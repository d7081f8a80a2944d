package lang

import (
	"testing"

	sitter "github.com/tree-sitter/go-tree-sitter"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, l LanguageSupport, source string) *sitter.Node {
	t.Helper()
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(l.Grammar())
	tree := parser.Parse([]byte(source), nil)
	require.NotNil(t, tree)
	t.Cleanup(tree.Close)
	return tree.RootNode()
}

func TestRegistryLookupByExtension(t *testing.T) {
	r := Default()

	l, ok := r.Lookup("src/service.ts")
	require.True(t, ok)
	require.Equal(t, "typescript", l.ID())

	l, ok = r.Lookup("src/app.py")
	require.True(t, ok)
	require.Equal(t, "python", l.ID())

	_, ok = r.Lookup("README.md")
	require.False(t, ok)
}

func TestTypeScriptExportedClassAndMethod(t *testing.T) {
	ts := NewTypeScript()
	source := `
export class UserService {
  async findUser(id: string): Promise<User> {
    if (id) {
      return this.repo.get(id);
    }
  }
}
`
	root := parse(t, ts, source)

	var class *sitter.Node
	walkTree(root, func(n *sitter.Node) bool {
		if n.Kind() == "class_declaration" {
			class = n
		}
		return true
	})
	require.NotNil(t, class)
	require.True(t, ts.IsChunkBoundary(class))

	md := ts.ExtractMetadata(class, []byte(source), nil)
	require.Equal(t, "UserService", md.SymbolName)
	require.Equal(t, "class", md.SymbolType)
	require.True(t, md.IsExported)

	var method *sitter.Node
	walkTree(class, func(n *sitter.Node) bool {
		if n.Kind() == "method_definition" {
			method = n
		}
		return true
	})
	require.NotNil(t, method)
	mmd := ts.ExtractMetadata(method, []byte(source), nil)
	require.Equal(t, "findUser", mmd.SymbolName)
	require.True(t, mmd.IsAsync)
	require.Equal(t, "UserService", mmd.ParentScope)
	require.GreaterOrEqual(t, ts.CalculateComplexity(method), 2)
}

func TestPythonPrivateFunctionNotExported(t *testing.T) {
	py := NewPython()
	source := `
def _helper():
    return 1

def public_api():
    return _helper()
`
	root := parse(t, py, source)

	var funcs []*sitter.Node
	walkTree(root, func(n *sitter.Node) bool {
		if n.Kind() == "function_definition" {
			funcs = append(funcs, n)
		}
		return true
	})
	require.Len(t, funcs, 2)

	helperMD := py.ExtractMetadata(funcs[0], []byte(source), nil)
	require.Equal(t, "_helper", helperMD.SymbolName)
	require.False(t, helperMD.IsExported)

	publicMD := py.ExtractMetadata(funcs[1], []byte(source), nil)
	require.True(t, publicMD.IsExported)
}

func TestPythonDecoratedMethodVariant(t *testing.T) {
	py := NewPython()
	source := `
class Repo:
    @classmethod
    def create(cls):
        return cls()
`
	root := parse(t, py, source)

	var method *sitter.Node
	walkTree(root, func(n *sitter.Node) bool {
		if n.Kind() == "function_definition" {
			method = n
		}
		return true
	})
	require.NotNil(t, method)

	md := py.ExtractMetadata(method, []byte(source), nil)
	require.Equal(t, "method", md.SymbolType)
	require.Equal(t, Variant("classmethod"), md.Variant)
	require.True(t, md.IsStatic)
	require.Equal(t, "Repo", md.ParentScope)
}

func TestRustMethodReceivesTypeScope(t *testing.T) {
	rs := NewRust()
	source := `
pub struct Counter { value: i32 }

impl Counter {
    pub fn increment(&mut self) {
        self.value += 1;
    }
}
`
	root := parse(t, rs, source)

	var method *sitter.Node
	walkTree(root, func(n *sitter.Node) bool {
		if n.Kind() == "function_item" {
			method = n
		}
		return true
	})
	require.NotNil(t, method)

	md := rs.ExtractMetadata(method, []byte(source), nil)
	require.Equal(t, "method", md.SymbolType)
	require.Equal(t, "Counter", md.ParentScope)
	require.False(t, md.IsStatic)
}
