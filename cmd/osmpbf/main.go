// Command osmpbf is the CLI front end described in spec.md §6: an
// external collaborator around the pbf/osm core, parsing flags and
// printing query results. It is not part of the decoding pipeline
// under test; it exists so the core has a runnable home, the way
// krypt.co/kr's krgpg wraps its own library packages with
// github.com/urfave/cli/v2.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/corfu-labs/osmpbf/internal/xlog"
	"github.com/corfu-labs/osmpbf/osm"
	"github.com/corfu-labs/osmpbf/pbf"
)

var errColor = color.New(color.FgRed)

var log = xlog.New("osmpbf")

func main() {
	app := &cli.App{
		Name:            "osmpbf",
		Usage:           "read an OpenStreetMap PBF file and answer small queries against it",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "f", Usage: "input file (default: stdin)"},
			&cli.BoolFlag{Name: "s", Usage: "print node/way counts"},
			&cli.BoolFlag{Name: "b", Usage: "print bounding box"},
			&cli.StringFlag{Name: "n", Usage: "look up a node by id"},
			&cli.StringFlag{Name: "w", Usage: "look up a way by id; trailing args are tag keys"},
		},
		Action: run,
		// Hand cli.Exit errors back from app.Run instead of letting
		// urfave/cli print them and exit, so every failure gets the
		// "error: " prefix below.
		ExitErrHandler: func(*cli.Context, error) {},
	}

	if err := app.Run(os.Args); err != nil {
		errColor.Fprintf(os.Stderr, "error: ")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	ops := 0
	for _, f := range []string{"s", "b", "n", "w"} {
		if c.IsSet(f) {
			ops++
		}
	}
	if ops == 0 {
		return cli.Exit("nothing to do: pass one of -s, -b, -n, -w", 1)
	}
	if ops > 1 {
		return cli.Exit("only one of -s, -b, -n, -w may be given at a time", 1)
	}
	if (c.IsSet("s") || c.IsSet("b")) && c.Args().Len() > 0 {
		return cli.Exit("unexpected extra arguments", 1)
	}

	path := c.String("f")
	var src *os.File
	if path == "" {
		src = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		defer f.Close()
		src = f
	}

	m, err := pbf.Decode(src)
	if err != nil {
		log.Error("decode failed: %v", err)
		return cli.Exit(err.Error(), 1)
	}

	switch {
	case c.IsSet("s"):
		printSummary(m)
	case c.IsSet("b"):
		return printBBox(m)
	case c.IsSet("n"):
		return printNode(m, c.String("n"))
	case c.IsSet("w"):
		return printWay(m, c.String("w"), c.Args().Slice())
	}
	return nil
}

func printSummary(m *osm.Map) {
	fmt.Printf("nodes: %d, ways: %d\n", m.NumNodes(), m.NumWays())
}

func printBBox(m *osm.Map) error {
	bbox, ok := m.Bounds()
	if !ok {
		return cli.Exit("no bounding box in input", 1)
	}
	fmt.Printf("min_lon: %.9f, max_lon: %.9f, max_lat: %.9f, min_lat: %.9f\n",
		float64(bbox.MinLon)/1e9, float64(bbox.MaxLon)/1e9,
		float64(bbox.MaxLat)/1e9, float64(bbox.MinLat)/1e9)
	return nil
}

func printNode(m *osm.Map, idStr string) error {
	id, err := parseID(idStr)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	idx := m.FindNode(id)
	if idx < 0 {
		fmt.Printf("%d\tnot found\n", id)
		return nil
	}
	n, _ := m.Node(idx)
	fmt.Printf("%d\t%.7f %.7f\n", n.ID, float64(n.Lat)/1e9, float64(n.Lon)/1e9)
	return nil
}

func printWay(m *osm.Map, idStr string, keys []string) error {
	id, err := parseID(idStr)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	idx := m.FindWay(id)
	if idx < 0 {
		fmt.Printf("%d\tnot found\n", id)
		return nil
	}
	w, _ := m.Way(idx)

	if len(keys) == 0 {
		refs := make([]string, w.RefCount())
		for i := range refs {
			r, _ := w.Ref(i)
			refs[i] = fmt.Sprintf("%d", r)
		}
		fmt.Printf("%d\t%s\n", w.ID, joinSpace(refs))
		return nil
	}

	var vals []string
	for _, k := range keys {
		if v, ok := w.TagValue(k); ok {
			vals = append(vals, v)
		}
	}
	fmt.Printf("%d\t%s\n", w.ID, joinSpace(vals))
	return nil
}

func joinSpace(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += " "
		}
		out += s
	}
	return out
}

func parseID(s string) (int64, error) {
	var id int64
	_, err := fmt.Sscanf(s, "%d", &id)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
