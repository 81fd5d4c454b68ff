package emit

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"hostdeps/internal/graph"
	"hostdeps/internal/label"
	"hostdeps/internal/model"
)

// fixture: /bin/x -> libfoo.so.1 (symlink of libfoo.so.1.0) -> libc.so.6
func fixture(t *testing.T) ([]*model.Binary, *graph.Store, *label.Assignment) {
	t.Helper()

	bin := &model.Binary{Path: "/bin/x"}
	bin.AddDep("libfoo.so.1", "/lib/libfoo.so.1", "/lib/libfoo.so.1.0")

	libfoo := model.NewSharedObject("/lib/libfoo.so.1.0", []string{"/lib/libfoo.so.1"}, false)
	libfoo.AddDep("libc.so.6", "/lib/libc.so.6", "/lib/libc.so.6")
	libc := model.NewSharedObject("/lib/libc.so.6", nil, false)

	store := graph.NewStore()
	for _, so := range []*model.SharedObject{libfoo, libc} {
		if err := store.Add(so); err != nil {
			t.Fatal(err)
		}
	}

	bins := []*model.Binary{bin}
	labels, err := label.Assign(bins, store)
	if err != nil {
		t.Fatal(err)
	}
	return bins, store, labels
}

func TestBuildSnapshot(t *testing.T) {
	bins, store, labels := fixture(t)
	snap := Build(bins, store, labels)

	want := &Snapshot{
		Binaries: []Node{{
			Label: "x",
			Path:  "/bin/x",
			Deps: []DepRef{{
				ShortName: "libfoo.so.1",
				Declared:  "/lib/libfoo.so.1",
				Path:      "/lib/libfoo.so.1.0",
				Label:     "libfoo",
			}},
		}},
		Libraries: []Node{
			{
				Label:   "libfoo",
				Path:    "/lib/libfoo.so.1.0",
				Aliases: []string{"/lib/libfoo.so.1"},
				Deps: []DepRef{{
					ShortName: "libc.so.6",
					Declared:  "/lib/libc.so.6",
					Path:      "/lib/libc.so.6",
					Label:     "libc",
				}},
			},
			{
				Label: "libc",
				Path:  "/lib/libc.so.6",
				Deps:  []DepRef{},
			},
		},
	}
	if diff := cmp.Diff(want, snap); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteJSONRoundTrips(t *testing.T) {
	bins, store, labels := fixture(t)
	snap := Build(bins, store, labels)

	var buf bytes.Buffer
	if err := WriteJSON(&buf, snap); err != nil {
		t.Fatal(err)
	}
	var back Snapshot
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatal(err)
	}
	if len(back.Binaries) != 1 || len(back.Libraries) != 2 {
		t.Errorf("round trip lost nodes: %+v", back)
	}
}

func TestTree(t *testing.T) {
	bins, store, _ := fixture(t)

	var buf bytes.Buffer
	Tree(&buf, bins[0], store)

	want := strings.Join([]string{
		"/bin/x",
		"    libfoo.so.1 => /lib/libfoo.so.1 (/lib/libfoo.so.1.0)",
		"        libc.so.6 => /lib/libc.so.6",
		"",
	}, "\n")
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestTreeCyclic(t *testing.T) {
	bin := &model.Binary{Path: "/bin/x"}
	bin.AddDep("libc.so.6", "/lib/libc.so.6", "/lib/libc.so.6")

	libc := model.NewSharedObject("/lib/libc.so.6", nil, false)
	libc.AddDep("ld.so.2", "/lib/ld.so.2", "/lib/ld.so.2")
	ld := model.NewSharedObject("/lib/ld.so.2", nil, false)
	ld.AddDep("libc.so.6", "/lib/libc.so.6", "/lib/libc.so.6")

	store := graph.NewStore()
	for _, so := range []*model.SharedObject{libc, ld} {
		if err := store.Add(so); err != nil {
			t.Fatal(err)
		}
	}

	var buf bytes.Buffer
	Tree(&buf, bin, store) // must terminate
	if !strings.Contains(buf.String(), "...") {
		t.Errorf("cycle not marked: %q", buf.String())
	}
}
