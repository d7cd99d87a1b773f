package cmd

import (
	"fmt"
	"io"

	"github.com/urfave/cli"

	"github.com/spaghettifunk/qtk/engine/assets"
	"github.com/spaghettifunk/qtk/engine/assets/loaders"
)

type meshSummary struct {
	Name     string
	Vertices int
	Indices  int
	Material string
	Textures int
}

type modelSummary struct {
	Path      string
	Nodes     int
	Materials int
	Meshes    []meshSummary
}

// Inspect imports every model given as argument and prints what the scene
// would get out of it, without opening a window.
func Inspect(ctx *cli.Context) error {
	if ctx.NArg() == 0 {
		return cli.NewExitError("inspect: missing model path", 1)
	}
	am := assets.NewAssetManager(ctx.String("assets"))
	for _, p := range ctx.Args() {
		summary, err := summarizeModel(am, p)
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		printModelSummary(ctx.App.Writer, summary)
	}
	return nil
}

func summarizeModel(am *assets.AssetManager, p string) (*modelSummary, error) {
	fsys, name, err := am.Resolve(p)
	if err != nil {
		return nil, err
	}
	imported, err := am.Models().Import(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("import '%s': %w", p, err)
	}

	summary := &modelSummary{
		Path:      p,
		Nodes:     countNodes(imported.Root),
		Materials: len(imported.Materials),
	}
	for _, m := range imported.Meshes {
		ms := meshSummary{
			Name:     m.Name,
			Vertices: len(m.Vertices),
			Indices:  len(m.Indices),
		}
		if m.Material >= 0 && m.Material < len(imported.Materials) {
			mat := imported.Materials[m.Material]
			ms.Material = mat.Name
			ms.Textures = len(mat.Textures)
		}
		summary.Meshes = append(summary.Meshes, ms)
	}
	return summary, nil
}

func countNodes(n *loaders.ImportedNode) int {
	if n == nil {
		return 0
	}
	count := 1
	for _, c := range n.Children {
		count += countNodes(c)
	}
	return count
}

func printModelSummary(w io.Writer, s *modelSummary) {
	fmt.Fprintf(w, "%s: %d nodes, %d meshes, %d materials\n", s.Path, s.Nodes, len(s.Meshes), s.Materials)
	for _, m := range s.Meshes {
		material := m.Material
		if material == "" {
			material = "-"
		}
		fmt.Fprintf(w, "  %-20s vertices=%-6d indices=%-6d material=%s textures=%d\n",
			m.Name, m.Vertices, m.Indices, material, m.Textures)
	}
}
