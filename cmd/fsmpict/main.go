// Command fsmpict works with state-machine diagrams and their pict
// markup form: import reconstructs a diagram from markup, and the other
// commands convert, render or execute the result.
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/CarterSheard/fsm-mcos/pkg/diagram"
	"github.com/CarterSheard/fsm-mcos/pkg/machine"
	"github.com/CarterSheard/fsm-mcos/pkg/pict"
	"github.com/CarterSheard/fsm-mcos/pkg/render"
)

const usage = `fsmpict - state-machine diagram toolkit

Usage:
  fsmpict <command> [options]

Commands:
  import     Reconstruct a diagram from pict markup, write JSON
  export     Convert a diagram JSON file back to pict markup
  render     Render a diagram (pict or JSON) to SVG or PNG
  dot        Generate Graphviz DOT output
  matrix     Print the adjacency matrix (or list with --list)
  run        Step the machine interactively
  info       Show diagram and machine information

Examples:
  fsmpict import diagram.pict -o diagram.json --pretty
  fsmpict export diagram.json -o diagram.pict
  fsmpict render diagram.pict -o diagram.svg
  fsmpict dot diagram.pict | dot -Tpng -o diagram.png
  fsmpict run diagram.pict

Use "fsmpict <command> -h" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "import":
		cmdImport(args)
	case "export":
		cmdExport(args)
	case "render":
		cmdRender(args)
	case "dot":
		cmdDot(args)
	case "matrix":
		cmdMatrix(args)
	case "run":
		cmdRun(args)
	case "info":
		cmdInfo(args)
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// loadGraph reads a diagram from either pict markup or document JSON,
// chosen by file extension.
func loadGraph(path string) (*diagram.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(path) == ".json" {
		doc, err := diagram.ParseJSON(data)
		if err != nil {
			return nil, err
		}
		return doc.Graph, nil
	}
	return pict.Parse(string(data))
}

func cmdImport(args []string) {
	if len(args) < 1 {
		fatalf("Usage: fsmpict import <input.pict> [-o output.json] [--pretty]")
	}
	input := args[0]
	output := ""
	pretty := false
	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "-o", "--output":
			if i+1 < len(args) {
				output = args[i+1]
				i++
			}
		case "--pretty":
			pretty = true
		}
	}
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".json"
	}

	data, err := os.ReadFile(input)
	if err != nil {
		fatalf("Error reading %s: %v", input, err)
	}
	g, err := pict.Parse(string(data))
	if err != nil {
		fatalf("Error importing %s: %v", input, err)
	}
	if len(g.Nodes) == 0 {
		fatalf("Error importing %s: no states recovered from markup", input)
	}

	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	doc := diagram.NewDocument(name, g)
	out, err := diagram.ToJSON(doc, pretty)
	if err != nil {
		fatalf("Error encoding %s: %v", output, err)
	}
	if err := os.WriteFile(output, append(out, '\n'), 0644); err != nil {
		fatalf("Error writing %s: %v", output, err)
	}
	fmt.Printf("Imported %d states, %d edges -> %s\n", len(g.Nodes), len(g.Edges), output)
}

func cmdExport(args []string) {
	if len(args) < 1 {
		fatalf("Usage: fsmpict export <input.json> [-o output.pict]")
	}
	input := args[0]
	output := ""
	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "-o", "--output":
			if i+1 < len(args) {
				output = args[i+1]
				i++
			}
		}
	}
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".pict"
	}

	g, err := loadGraph(input)
	if err != nil {
		fatalf("Error loading %s: %v", input, err)
	}
	if err := os.WriteFile(output, []byte(pict.Export(g)), 0644); err != nil {
		fatalf("Error writing %s: %v", output, err)
	}
	fmt.Printf("Exported %s\n", output)
}

func cmdRender(args []string) {
	if len(args) < 1 {
		fatalf("Usage: fsmpict render <input> [-o output.svg|output.png]")
	}
	input := args[0]
	output := ""
	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "-o", "--output":
			if i+1 < len(args) {
				output = args[i+1]
				i++
			}
		}
	}
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".svg"
	}

	g, err := loadGraph(input)
	if err != nil {
		fatalf("Error loading %s: %v", input, err)
	}

	switch filepath.Ext(output) {
	case ".png":
		f, err := os.Create(output)
		if err != nil {
			fatalf("Error creating %s: %v", output, err)
		}
		defer f.Close()
		if err := render.PNG(g, f, render.DefaultPNGOptions()); err != nil {
			fatalf("Error rendering %s: %v", output, err)
		}
	default:
		svg := render.SVG(g, render.DefaultSVGOptions())
		if err := os.WriteFile(output, []byte(svg), 0644); err != nil {
			fatalf("Error writing %s: %v", output, err)
		}
	}
	fmt.Printf("Rendered %s\n", output)
}

func loadMachine(path string) *machine.Machine {
	g, err := loadGraph(path)
	if err != nil {
		fatalf("Error loading %s: %v", path, err)
	}
	m, err := machine.FromGraph(g)
	if err != nil {
		fatalf("Error building machine from %s: %v", path, err)
	}
	return m
}

func cmdDot(args []string) {
	if len(args) < 1 {
		fatalf("Usage: fsmpict dot <input>")
	}
	m := loadMachine(args[0])
	title := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	fmt.Print(m.DOT(title))
}

func cmdMatrix(args []string) {
	if len(args) < 1 {
		fatalf("Usage: fsmpict matrix <input> [--list]")
	}
	m := loadMachine(args[0])
	for _, a := range args[1:] {
		if a == "--list" {
			fmt.Print(m.AdjacencyList())
			return
		}
	}
	fmt.Print(m.AdjacencyMatrix())
}

func cmdRun(args []string) {
	if len(args) < 1 {
		fatalf("Usage: fsmpict run <input>")
	}
	m := loadMachine(args[0])
	r, err := machine.NewRunner(m)
	if err != nil {
		fatalf("Error: %v", err)
	}

	fmt.Println(m.String())
	fmt.Println("Enter input symbols one per line (\"quit\" to exit, \"reset\" to restart):")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("[%s] > ", strings.Join(r.CurrentStates(), ","))
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "quit", "exit":
			return
		case "reset":
			r.Reset()
			continue
		case "":
			continue
		}
		step := r.Step(line)
		status := ""
		if r.InAccepting() {
			status = " (accepting)"
		}
		if len(step.ToStates) == 0 {
			status = " (dead)"
		}
		fmt.Printf("  %s --%s--> %s%s\n", strings.Join(step.FromStates, ","),
			step.Input, strings.Join(step.ToStates, ","), status)
	}
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fatalf("Usage: fsmpict info <input>")
	}
	g, err := loadGraph(args[0])
	if err != nil {
		fatalf("Error loading %s: %v", args[0], err)
	}

	accepting := 0
	var loops, transitions, starts int
	for _, n := range g.Nodes {
		if n.IsAccept {
			accepting++
		}
	}
	for _, e := range g.Edges {
		switch e.(type) {
		case *diagram.Transition:
			transitions++
		case *diagram.SelfLoop:
			loops++
		case *diagram.StartArrow:
			starts++
		}
	}

	fmt.Printf("States:      %d (%d accepting)\n", len(g.Nodes), accepting)
	fmt.Printf("Transitions: %d (%d self-loops)\n", transitions+loops, loops)
	fmt.Printf("Start arrow: %v\n", starts == 1)

	if m, err := machine.FromGraph(g); err == nil {
		fmt.Printf("Alphabet:    %v\n", m.Alphabet)
		fmt.Printf("Determinism: %v\n", m.IsDeterministic())
	}
}
