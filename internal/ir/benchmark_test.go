package ir

import (
	"testing"
)

// buildSharedDAG builds a chain of self-sharing tuples: depth+1 unique nodes,
// 2^depth root-to-leaf paths.
func buildSharedDAG(depth int) Expression {
	b := NewBuilder()

	node := Expression(b.Constant(int64(0)))
	for i := 0; i < depth; i++ {
		node = b.Tuple(node, node)
	}

	return node
}

func BenchmarkRewriteSharedDAG(b *testing.B) {
	root := buildSharedDAG(20)
	r := &BaseRewriter{}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := r.Rewrite(root); err != nil {
			b.Fatalf("rewrite failed: %v", err)
		}
	}
}

func BenchmarkVisitSharedDAG(b *testing.B) {
	root := buildSharedDAG(20)
	v := &BaseVisitor{}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if err := v.Visit(root); err != nil {
			b.Fatalf("visit failed: %v", err)
		}
	}
}

func BenchmarkRewriteSubstitution(b *testing.B) {
	bld := NewBuilder()
	x := bld.Var("x", nil)

	body := Expression(x)
	for i := 0; i < 100; i++ {
		body = bld.Call(bld.Primitive("add"), body, bld.Constant(int64(i)))
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		s := newVarSubstituter(x, bld.Constant(int64(1)))
		if _, err := s.Rewrite(body); err != nil {
			b.Fatalf("rewrite failed: %v", err)
		}
	}
}
