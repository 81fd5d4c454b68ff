package emit

import (
	"fmt"
	"io"

	"hostdeps/internal/graph"
	"hostdeps/internal/model"
)

// Tree writes an lddtree-style rendering of one binary's dependency
// tree:
//
//	/bin/x
//	    libfoo.so.1 => /lib/libfoo.so.1 (/lib/libfoo.so.1.0)
//	        libc.so.6 => /lib/libc.so.6
//
// The parenthesized path appears when the declared path differs from the
// canonical one. Shared objects seen earlier in this binary's tree are
// cut off with an ellipsis so cyclic graphs terminate.
func Tree(w io.Writer, bin *model.Binary, store *graph.Store) {
	fmt.Fprintf(w, "%s\n", bin.Path)
	seen := make(map[string]bool)
	for _, dep := range bin.Deps {
		treeNode(w, dep, store, 1, seen)
	}
}

func treeNode(w io.Writer, dep model.Dep, store *graph.Store, depth int, seen map[string]bool) {
	for i := 0; i < depth; i++ {
		fmt.Fprint(w, "    ")
	}
	if dep.AsPath != dep.Resolved {
		fmt.Fprintf(w, "%s => %s (%s)", dep.ShortName, dep.AsPath, dep.Resolved)
	} else {
		fmt.Fprintf(w, "%s => %s", dep.ShortName, dep.AsPath)
	}

	if seen[dep.Resolved] {
		fmt.Fprint(w, " ...\n")
		return
	}
	seen[dep.Resolved] = true
	fmt.Fprint(w, "\n")

	so, ok := store.Get(dep.Resolved)
	if !ok {
		return
	}
	for _, child := range so.Deps {
		treeNode(w, child, store, depth+1, seen)
	}
}
