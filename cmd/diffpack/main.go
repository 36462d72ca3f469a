// Package main provides the diffpack CLI: fetch two revisions of a package
// from a registry (or read two local directories), build the diff tree, and
// print, export, or serve it.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"diffpack/internal/bundle"
	"diffpack/internal/config"
	"diffpack/internal/difftree"
	"diffpack/internal/localfs"
	"diffpack/internal/registry"
	"diffpack/internal/render"
	"diffpack/internal/session"
	"diffpack/internal/ws"
)

// Version is set during build time.
var Version = "dev"

var (
	configPath    string
	threshold     float64
	jsonOutput    bool
	hideUnchanged bool
	asciiOutput   bool
	exportPath    string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "diffpack",
	Short: "Compare two revisions of a package as a diff tree",
	Long: `diffpack fetches two revisions of a package from a registry (npm, crates
or zig), or reads two local directories, and builds a tree of added,
removed, modified, unchanged and renamed files with per-file line counts.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("threshold") {
			cfg.SimilarityThreshold = threshold
		}
		return nil
	},
}

var treeCmd = &cobra.Command{
	Use:   "tree <registry> <package> <from> <to>",
	Short: "Build and print the diff tree between two package versions",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess := newSession()
		tree, err := sess.BuildTreeForPackage(cmd.Context(), args[0], args[1], args[2], args[3])
		if err != nil {
			return err
		}
		return printTree(tree)
	},
}

var dirCmd = &cobra.Command{
	Use:   "dir <fromDir> <toDir>",
	Short: "Build and print the diff tree between two local directories",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fromFiles, err := localfs.ReadTree(args[0], cfg.Exclude)
		if err != nil {
			return err
		}
		toFiles, err := localfs.ReadTree(args[1], cfg.Exclude)
		if err != nil {
			return err
		}
		sess := newSession()
		tree := sess.BuildTree("dir:"+args[0], "dir:"+args[1], fromFiles, toFiles)
		return printTree(tree)
	},
}

var fileCmd = &cobra.Command{
	Use:   "file <registry> <package> <from> <to> <path>",
	Short: "Print the diff of a single file between two package versions",
	Long: `Builds the diff tree for the two versions, then prints the per-file
result for <path>. Renames are resolved from the tree, so a renamed file is
addressed by its new path.`,
	Args: cobra.ExactArgs(5),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess := newSession()
		tree, err := sess.BuildTreeForPackage(cmd.Context(), args[0], args[1], args[2], args[3])
		if err != nil {
			return err
		}

		oldPath := ""
		tree.Walk(func(node *difftree.DiffFileEntry) {
			if node.Path == args[4] && node.Status == difftree.StatusRenamed {
				oldPath = node.OldPath
			}
		})

		result, err := sess.DiffForPath(args[4], oldPath)
		if err != nil {
			return err
		}
		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(result)
		}
		fmt.Println(result.Data)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <registry> <package> <from> <to>",
	Short: "Export the diff as a zip bundle (tree.json + per-file patches)",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		fromFiles, err := client.FetchPackage(cmd.Context(), args[0], args[1], args[2])
		if err != nil {
			return err
		}
		toFiles, err := client.FetchPackage(cmd.Context(), args[0], args[1], args[3])
		if err != nil {
			return err
		}
		tree := difftree.Build(fromFiles, toFiles, cfg.SimilarityThreshold)

		out, err := os.Create(exportPath)
		if err != nil {
			return err
		}
		defer out.Close()
		if err := bundle.WriteDiffZip(out, tree, fromFiles, toFiles); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", exportPath)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the diff session to an embedding UI over a loopback websocket",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		server := ws.NewServer(newSession())
		return server.ListenAndServe(cfg.ListenAddr)
	},
}

func newClient() *registry.Client {
	return registry.NewClient(&http.Client{Timeout: cfg.FetchTimeout}, cfg.UserAgent)
}

func newSession() *session.Session {
	return session.New(newClient(), cfg.SimilarityThreshold)
}

func printTree(tree *difftree.DiffFileEntry) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tree)
	}
	render.Tree(os.Stdout, tree, render.Options{
		HideUnchanged: hideUnchanged,
		ASCII:         asciiOutput,
	})
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().Float64Var(&threshold, "threshold", 0.7, "rename similarity threshold (clamped to [0,1])")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit JSON instead of rendered output")

	treeCmd.Flags().BoolVar(&hideUnchanged, "changes-only", false, "hide unchanged files and directories")
	treeCmd.Flags().BoolVar(&asciiOutput, "ascii", false, "use ASCII branch characters")
	dirCmd.Flags().BoolVar(&hideUnchanged, "changes-only", false, "hide unchanged files and directories")
	dirCmd.Flags().BoolVar(&asciiOutput, "ascii", false, "use ASCII branch characters")
	exportCmd.Flags().StringVarP(&exportPath, "output", "o", "diff.zip", "output zip path")

	rootCmd.AddCommand(treeCmd, dirCmd, fileCmd, exportCmd, serveCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}
