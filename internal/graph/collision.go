package graph

import (
	"fmt"
	"sort"

	"hostdeps/internal/model"
)

// CheckCollisions verifies that every path in the finished graph (each
// binary's path, each library's canonical path, and each library's
// aliases) is claimed by exactly one node. A double claim means a
// requested binary was also discovered as a transitive dependency, or
// alias tracking collapsed two libraries onto one path; either way the
// graph is ambiguous and the run must not proceed to label assignment.
func CheckCollisions(bins []*model.Binary, store *Store) error {
	owners := make(map[string]string)
	claim := func(path, owner string) error {
		if prev, ok := owners[path]; ok {
			return fmt.Errorf("`%s` from %s collides with item from %s", path, owner, prev)
		}
		owners[path] = owner
		return nil
	}

	for _, bin := range bins {
		if err := claim(bin.Path, "binary `"+bin.Path+"`"); err != nil {
			return err
		}
	}
	for _, so := range store.All() {
		owner := "shared object `" + so.Path + "`"
		if err := claim(so.Path, owner); err != nil {
			return err
		}
		for _, alias := range sortedAliases(so) {
			if err := claim(alias, owner); err != nil {
				return err
			}
		}
	}
	return nil
}

func sortedAliases(so *model.SharedObject) []string {
	out := make([]string, 0, len(so.Aliases))
	for a := range so.Aliases {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
