package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/moneyhub/di/framework/container"
)

// printTree writes a container snapshot as an indented tree, ancestors last.
func printTree(w io.Writer, info container.DebugInfo) {
	for cur := &info; cur != nil; cur = cur.Parent {
		fmt.Fprintf(w, "container %s (scope %s)\n", cur.Container, strings.Join(cur.Scope, " -> "))
		printModule(w, cur.Root, 1)
	}
}

func printModule(w io.Writer, m container.ModuleInfo, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, f := range m.Factories {
		line := fmt.Sprintf("%sfactory %s (%s, %s)", indent, f.Name, f.Visibility, f.Lifetime)
		if len(f.Needs) > 0 {
			line += " needs " + strings.Join(f.Needs, ", ")
		}
		if f.Cached {
			line += " [cached]"
		}
		fmt.Fprintln(w, line)
	}
	for _, v := range m.Values {
		fmt.Fprintf(w, "%svalue %s (%s, %s)\n", indent, v.Name, v.Visibility, v.Type)
	}
	for _, sub := range m.Modules {
		fmt.Fprintf(w, "%smodule %s (%s)\n", indent, sub.Name, sub.Visibility)
		printModule(w, sub, depth+1)
	}
}
