package main

import (
	"fmt"
	"os"

	"hostdeps/internal/diag"
	"hostdeps/internal/elfinspect"
	"hostdeps/internal/emit"
	"hostdeps/internal/graph"
	"hostdeps/internal/label"
	"hostdeps/internal/model"
	"hostdeps/internal/tui"
	"hostdeps/internal/web"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"github.com/tcnksm/go-latest"
)

func checkUpdate(currentVer string) {
	githubTag := &latest.GithubTag{
		Owner:      "hostdeps-dev",
		Repository: "hostdeps",
	}

	res, err := latest.Check(githubTag, currentVer)
	if err != nil {
		return // Silently fail
	}

	if res.Outdated {
		fmt.Printf("\n✨ A new version is available: %s (you have %s)\n", res.Current, currentVer)
		fmt.Println("👉 Download it from https://github.com/hostdeps-dev/hostdeps/releases")
	} else if pflag.Lookup("update").Changed {
		fmt.Printf("✅ You are using the latest version: %s\n", currentVer)
	}
}

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: hostdeps [options] BINARY...\n\n")
		fmt.Fprintf(os.Stderr, "hostdeps resolves the shared-library dependency closure of host\n")
		fmt.Fprintf(os.Stderr, "binaries the way the dynamic loader would, merges libraries reached\n")
		fmt.Fprintf(os.Stderr, "through different symlinks, and assigns every file a unique short label.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  hostdeps /usr/bin/python3              # Summarize the closure\n")
		fmt.Fprintf(os.Stderr, "  hostdeps -t /usr/bin/python3           # lddtree-style tree\n")
		fmt.Fprintf(os.Stderr, "  hostdeps -j -o deps.json /bin/sh       # JSON snapshot to a file\n")
		fmt.Fprintf(os.Stderr, "  hostdeps --tui /usr/bin/python3        # Browse interactively\n")
		fmt.Fprintf(os.Stderr, "  hostdeps --fuzzy-dep-path /nix/store /usr/bin/hg\n")
	}

	jsonFlag := pflag.BoolP("json", "j", false, "Output the dependency snapshot as JSON")
	treeFlag := pflag.BoolP("tree", "t", false, "Print an lddtree-style dependency tree per binary")
	outputFlag := pflag.StringP("output", "o", "", "Write JSON or tree output to the specified file")
	extraFlag := pflag.StringArray("extra-binary", nil, "Additional binary to include in the closure (repeatable)")
	fuzzyFlag := pflag.StringArray("fuzzy-dep-path", nil, "Treat this path as a package boundary: stop symlink resolution at it (repeatable)")
	tuiFlag := pflag.Bool("tui", false, "Browse the dependency graph interactively")
	webFlag := pflag.BoolP("web", "w", false, "Serve the dependency graph on http://localhost:8080")
	portFlag := pflag.String("port", "8080", "Port for --web")
	versionFlag := pflag.BoolP("version", "V", false, "Print version information")
	updateFlag := pflag.BoolP("update", "u", false, "Check for latest version")
	helpFlag := pflag.BoolP("help", "h", false, "Show this help message")
	pflag.Parse()

	if *helpFlag {
		pflag.Usage()
		return
	}

	if *versionFlag {
		fmt.Printf("hostdeps version %s\n", model.Version)
		return
	}

	if *updateFlag {
		checkUpdate(model.Version)
		return
	}

	binaries := append(pflag.Args(), *extraFlag...)
	if len(binaries) == 0 {
		pflag.Usage()
		os.Exit(2)
	}

	rep := diag.NewReporter(os.Stderr)
	builder := &graph.Builder{
		Insp:  &elfinspect.Inspector{Paths: elfinspect.Load(rep)},
		Fuzzy: graph.NewFuzzySet(*fuzzyFlag),
		Store: graph.NewStore(),
		Diag:  rep,
	}

	var bins []*model.Binary
	for _, path := range binaries {
		bin, err := builder.ProcessFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", path, err)
			os.Exit(1)
		}
		bins = append(bins, bin)
	}
	builder.ReportUnusedFuzzyPaths()

	if err := graph.CheckCollisions(bins, builder.Store); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	labels, err := label.Assign(bins, builder.Store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	snap := emit.Build(bins, builder.Store, labels)

	switch {
	case *webFlag:
		web.StartServer(snap, bins, builder.Store, *portFlag)
	case *tuiFlag:
		runTuiMode(snap)
	case *jsonFlag:
		withOutput(*outputFlag, func(w *os.File) error {
			return emit.WriteJSON(w, snap)
		})
	case *treeFlag:
		withOutput(*outputFlag, func(w *os.File) error {
			for _, bin := range bins {
				emit.Tree(w, bin, builder.Store)
			}
			return nil
		})
	default:
		byPath := labels.ByPath()
		for _, bin := range bins {
			fmt.Printf("%s %s (%d direct deps)\n", byPath[bin.Path], bin.Path, len(bin.Deps))
		}
		for _, so := range builder.Store.All() {
			fmt.Printf("%s %s\n", byPath[so.Path], so.Path)
		}
	}
}

// withOutput runs emit against stdout or, when set, the named file.
func withOutput(path string, emitTo func(*os.File) error) {
	out := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", path, err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	if err := emitTo(out); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}
	if path != "" {
		fmt.Printf("Output saved to %s\n", path)
	}
}

func runTuiMode(snap *emit.Snapshot) {
	m := tui.InitialModel(snap)
	p := tea.NewProgram(&m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
}
