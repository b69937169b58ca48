// Package fuzz provides fuzz testing for the markup and JSON parsers.
// Run with: go test -fuzz=FuzzParsePict -fuzztime=30s ./tests/fuzz/
package fuzz

import (
	"testing"

	"github.com/CarterSheard/fsm-mcos/pkg/diagram"
	"github.com/CarterSheard/fsm-mcos/pkg/pict"
)

// FuzzParsePict feeds arbitrary text to the markup importer. Looking
// for panics and infinite loops; parse errors are fine.
func FuzzParsePict(f *testing.F) {
	// Seed with valid markup
	f.Add("\\begin{pict}[scale=0.1]\n\\end{pict}\n")
	f.Add("\\begin{pict}[scale=0.1]\nstroke [black] (30,-30) circle (3);\n\\end{pict}\n")
	f.Add("\\begin{pict}[scale=0.1]\nstroke [black] (30,-30) circle (3);\nstroke (30,-30) label {A};\n\\end{pict}\n")
	f.Add("\\begin{pict}[scale=0.1]\nstroke [black] (30,-30) arc (0:288:2.25);\n\\end{pict}\n")
	f.Add("\\begin{pict}[scale=0.1]\nstroke [black] (22,-30) -- (27,-30);\nfill [black] (27,-30) -- (26,-29) -- (26,-31);\n\\end{pict}\n")

	// Seed with edge cases
	f.Add("")
	f.Add("\\begin{pict}")
	f.Add("\\begin{pict}\\end{pict}")
	f.Add("\\begin{pict}[scale=0]\nstroke [black] (30,-30) circle (3);\n\\end{pict}\n")
	f.Add("\\begin{pict}[scale=-0.1]\n\\end{pict}\n")
	f.Add("\\begin{pict}[scale=0.1]\nstroke [black] (1e308,-1e308) circle (1e308);\n\\end{pict}\n")
	f.Add("\\begin{pict}[scale=0.1]\nstroke;;;;\n\\end{pict}\n")
	f.Add("\\begin{pict}[scale=0.1]\nstroke [black] (30,-30) arc (0:0:0);\n\\end{pict}\n")

	f.Fuzz(func(t *testing.T, data string) {
		// Should not panic
		g, err := pict.Parse(data)

		if err == nil {
			// A recovered graph must at least be internally consistent
			if verr := g.Validate(); verr != nil {
				t.Errorf("Parse produced an invalid graph: %v", verr)
			}
			// Exporting whatever was recovered should not panic
			_ = pict.Export(g)
		}
	})
}

// FuzzParseJSON feeds arbitrary bytes to the document parser.
func FuzzParseJSON(f *testing.F) {
	// Seed with valid documents
	f.Add([]byte(`{"id":"x","name":"d","nodes":[],"edges":[]}`))
	f.Add([]byte(`{"id":"x","name":"d","nodes":[{"x":100,"y":100,"text":"q0","accept":true}],"edges":[]}`))
	f.Add([]byte(`{"id":"x","name":"d","nodes":[{"x":0,"y":0},{"x":200,"y":0}],"edges":[{"kind":"transition","from":0,"to":1,"text":"a","parallelPart":0.5}]}`))
	f.Add([]byte(`{"id":"x","name":"d","nodes":[{"x":0,"y":0}],"edges":[{"kind":"selfLoop","on":0,"anchorAngle":1.5}]}`))
	f.Add([]byte(`{"id":"x","name":"d","nodes":[{"x":0,"y":0}],"edges":[{"kind":"startArrow","into":0,"deltaX":-80}]}`))

	// Seed with edge cases
	f.Add([]byte(`{}`))
	f.Add([]byte(`[]`))
	f.Add([]byte(`null`))
	f.Add([]byte(``))
	f.Add([]byte(`{"nodes":[],"edges":[{"kind":"transition","from":99,"to":0}]}`))
	f.Add([]byte(`{"nodes":[],"edges":[{"kind":"teleport"}]}`))
	f.Add([]byte(`{"nodes":[{"x":1e999}]}`))

	f.Fuzz(func(t *testing.T, data []byte) {
		// Should not panic
		doc, err := diagram.ParseJSON(data)

		if err == nil {
			// A decoded document re-encodes without error
			if _, jerr := diagram.ToJSON(doc, false); jerr != nil {
				t.Errorf("decoded document failed to re-encode: %v", jerr)
			}
		}
	})
}
