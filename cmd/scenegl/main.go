// scenegl renders YAML scenes of OBJ meshes with MTL materials and
// inspects the files those scenes are made of.
//
// Controls in the viewer:
//
//	W/A/S/D     - Move (hold Shift to go faster)
//	Arrow keys  - Orbit around the camera target
//	Right drag  - Orbit
//	Left click  - Pick the object under the cursor
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"SceneGL/internal/config"
	"SceneGL/internal/engine"
	"SceneGL/internal/geometry"
	"SceneGL/internal/layout"
	"SceneGL/internal/logger"
	"SceneGL/internal/material"

	"github.com/spf13/cobra"
)

func main() {
	defer logger.Sync()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	cfg := config.Default()

	root := &cobra.Command{
		Use:           "scenegl",
		Short:         "Render and inspect OBJ/MTL scenes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
			if err := logger.InitWith(cfg.Log.Development); err != nil {
				return err
			}
			return logger.SetLevel(cfg.Log.Level)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")

	root.AddCommand(
		newViewCmd(&cfg),
		newInspectMTLCmd(),
		newInspectLayoutCmd(),
		newBakeCmd(),
		newConfigCmd(&cfg),
	)
	return root
}

func newViewCmd(cfg *config.Config) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "view <scene.yaml>",
		Short: "Open a window rendering the scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("watch") {
				cfg.Watch = watch
			}
			return engine.NewEngine(*cfg).Run(args[0])
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "reload material libraries when they change")
	return cmd
}

func newInspectMTLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect-mtl <file.mtl>",
		Short: "Print the materials of a material library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := material.Load(args[0])
			if err != nil {
				return err
			}
			printLibrary(cmd.OutOrStdout(), lib)
			return nil
		},
	}
}

func printLibrary(out io.Writer, lib *material.Library) {
	for _, name := range lib.Names() {
		m, _ := lib.Get(name)
		fmt.Fprintf(out, "%s\n", m.Name)
		fmt.Fprintf(out, "  ambient   %v\n", formatColor(m.Ambient))
		fmt.Fprintf(out, "  diffuse   %v\n", formatColor(m.Diffuse))
		fmt.Fprintf(out, "  specular  %v\n", formatColor(m.Specular))
		fmt.Fprintf(out, "  shininess %g\n", m.Shininess)
		fmt.Fprintf(out, "  alpha     %g\n", m.Alpha)
		printMap(out, "diffuse map", m.DiffuseMap)
		printMap(out, "specular map", m.SpecularMap)
		printMap(out, "normal map", m.NormalMap)
		fmt.Fprintf(out, "  layout    %s\n", layout.ForMaterial(m))
	}
	for _, w := range lib.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
}

func printMap(out io.Writer, label string, tm *material.TextureMap) {
	if tm == nil {
		return
	}
	fmt.Fprintf(out, "  %s %s scale=%g,%g offset=%g,%g\n", label, tm.Path,
		tm.Scale.X(), tm.Scale.Y(), tm.Offset.X(), tm.Offset.Y())
}

func formatColor(c material.Color) string {
	return fmt.Sprintf("%g %g %g", c.X(), c.Y(), c.Z())
}

func newInspectLayoutCmd() *cobra.Command {
	var textured bool
	cmd := &cobra.Command{
		Use:   "inspect-layout",
		Short: "Print the vertex layout used for untextured or textured materials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printLayout(cmd.OutOrStdout(), layout.For(textured))
			return nil
		},
	}
	cmd.Flags().BoolVar(&textured, "textured", false, "show the textured layout")
	return cmd
}

func printLayout(out io.Writer, l layout.Layout) {
	fmt.Fprintf(out, "stride %d bytes\n", l.Stride)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ATTRIBUTE\tCOMPONENTS\tOFFSET")
	for _, a := range l.Attributes {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", a.Semantic, a.Components, a.Offset)
	}
	tw.Flush()
}

func newBakeCmd() *cobra.Command {
	var (
		textured           bool
		recalculateNormals bool
	)
	cmd := &cobra.Command{
		Use:   "bake <mesh.obj|mesh.gltf|mesh.glb> <out" + geometry.MeshExt + ">",
		Short: "Convert a mesh into the binary format loaded without parsing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !strings.EqualFold(filepath.Ext(args[1]), geometry.MeshExt) {
				return fmt.Errorf("output must end in %s", geometry.MeshExt)
			}
			geom, err := geometry.Load(args[0], geometry.OBJOptions{RecalculateNormals: recalculateNormals})
			if err != nil {
				return err
			}
			geom.Prepare(layout.For(textured))
			if err := geom.Save(args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d vertices, %d triangles, %d groups\n",
				args[1], geom.VertexCount(), len(geom.Indices)/3, len(geom.Groups))
			return nil
		},
	}
	cmd.Flags().BoolVar(&textured, "textured", false, "also bake tangents and texture coordinates")
	cmd.Flags().BoolVar(&recalculateNormals, "recalculate-normals", false, "ignore normals stored in the mesh")
	return cmd
}

func newConfigCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "config <out.yaml>",
		Short: "Write the effective configuration to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cfg.Save(args[0])
		},
	}
}
