// Command bandsaw splits STL models into parts that fit a 3D printer's
// build volume.
//
// Usage:
//
//	bandsaw info [-flip] model.stl
//	bandsaw split [-x 220 -y 220 -z 250] [-flip] [-o dir] model.stl
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/bandsaw3d/bandsaw/pkg/grid"
	"github.com/bandsaw3d/bandsaw/pkg/kernel/sdfx"
	"github.com/bandsaw3d/bandsaw/pkg/mesh"
	"github.com/bandsaw3d/bandsaw/pkg/slicer"
	"github.com/bandsaw3d/bandsaw/pkg/splitter"
	"github.com/bandsaw3d/bandsaw/pkg/stl"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("bandsaw: ")

	if len(os.Args) < 2 {
		usage()
	}
	switch os.Args[1] {
	case "info":
		runInfo(os.Args[2:])
	case "split":
		runSplit(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  bandsaw info [-flip] <model.stl>")
	fmt.Fprintln(os.Stderr, "  bandsaw split [-x -y -z] [-flip] [-o dir] <model.stl>")
	os.Exit(2)
}

func load(path string) (*mesh.Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return stl.Decode(data)
}

func runInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	flip := fs.Bool("flip", false, "rotate the model 180 degrees about the X axis first")
	fs.Parse(args)
	if fs.NArg() != 1 {
		usage()
	}

	m, err := load(fs.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	if *flip {
		m.FlipX()
	}
	b, err := m.Bounds()
	if err != nil {
		log.Fatal(err)
	}
	size := b.Size()

	fmt.Printf("triangles:    %d\n", m.TriangleCount())
	fmt.Printf("vertices:     %d\n", m.VertexCount())
	fmt.Printf("dimensions:   %.1f x %.1f x %.1f mm\n", size.X, size.Y, size.Z)
	fmt.Printf("surface area: %.2f mm2\n", m.SurfaceArea())
	if m.Watertight() {
		fmt.Printf("watertight:   yes\n")
		fmt.Printf("volume:       %.2f mm3\n", m.Volume())
	} else {
		fmt.Printf("watertight:   no\n")
	}
}

func runSplit(args []string) {
	fs := flag.NewFlagSet("split", flag.ExitOnError)
	x := fs.Float64("x", 220, "build volume X extent in mm")
	y := fs.Float64("y", 220, "build volume Y extent in mm")
	z := fs.Float64("z", 250, "build volume Z extent in mm")
	flip := fs.Bool("flip", false, "rotate the model 180 degrees about the X axis first")
	out := fs.String("o", "parts", "output directory")
	budget := fs.Duration("budget", slicer.DefaultBudget, "per-cell boolean time budget")
	res := fs.Int("resolution", sdfx.DefaultMeshCells, "boolean re-meshing resolution")
	fs.Parse(args)
	if fs.NArg() != 1 {
		usage()
	}

	m, err := load(fs.Arg(0))
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	boolean := slicer.NewBoolean(sdfx.NewWithResolution(*res))
	boolean.Budget = *budget

	start := time.Now()
	result, err := splitter.Split(ctx, m, grid.BuildVolume{X: *x, Y: *y, Z: *z, Flip: *flip}, splitter.Options{
		Primary: boolean,
		Progress: func(label string, triangles, completed, total int) {
			log.Printf("%s: %d triangles (%d/%d cells)", label, triangles, completed, total)
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	if err := writeParts(*out, result.Parts); err != nil {
		log.Fatal(err)
	}

	g := result.Grid
	strategy := "boolean"
	if result.Fallback {
		strategy = "filter fallback (model is not watertight)"
	}
	log.Printf("split %dx%dx%d grid into %d parts via %s in %s",
		g.NX, g.NY, g.NZ, len(result.Parts), strategy, time.Since(start).Round(time.Millisecond))
}

// writeParts serializes every part as part_NN.stl under dir. A failure
// partway removes the files already written: the invocation either
// persists the full set of parts or nothing.
func writeParts(dir string, parts []splitter.Part) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	var written []string
	for i, p := range parts {
		path := filepath.Join(dir, fmt.Sprintf("part_%02d.stl", i+1))
		if err := writePart(path, p); err != nil {
			for _, w := range written {
				os.Remove(w)
			}
			return err
		}
		written = append(written, path)
	}
	return nil
}

func writePart(path string, p splitter.Part) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := stl.Encode(f, p.Mesh, p.Label); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
