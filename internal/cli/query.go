package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pagegraph-tools/pagegraph/pkg/pagegraph"
)

// listOpts holds shared flags for the nodes and edges listing commands.
type listOpts struct {
	lenient bool
	kind    string // filter by kind tag
	tag     string // filter HTML elements by tag name (nodes only)
}

// newNodesCmd creates the nodes listing command.
func newNodesCmd() *cobra.Command {
	var opts listOpts

	cmd := &cobra.Command{
		Use:   "nodes <file.graphml>",
		Short: "List the typed nodes of a recording",
		Long: `List the typed nodes of a recording in source-document order.

Examples:
  pagegraph nodes page.graphml
  pagegraph nodes page.graphml --kind resource
  pagegraph nodes page.graphml --tag script`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := decodeGraph(cmd.Context(), args[0], opts.lenient)
			if err != nil {
				return err
			}
			return listNodes(g, &opts)
		},
	}

	cmd.Flags().BoolVar(&opts.lenient, "lenient", false, "keep unrecognized elements as unknown instead of failing")
	cmd.Flags().StringVar(&opts.kind, "kind", "", "only show nodes of this kind (e.g. \"html element\")")
	cmd.Flags().StringVar(&opts.tag, "tag", "", "only show HTML elements with this tag name")

	return cmd
}

func listNodes(g *pagegraph.Graph, opts *listOpts) error {
	var nodes []*pagegraph.Node
	switch {
	case opts.tag != "":
		nodes = g.NodesOfHTMLTagName(opts.tag)
	case opts.kind != "":
		nodes = g.FilterNodes(func(t pagegraph.NodeType) bool {
			return pagegraph.NodeKind(t) == opts.kind
		})
	default:
		nodes = g.Nodes()
	}

	for _, n := range nodes {
		fmt.Printf("%-12s %-24s %s\n", n.ID, pagegraph.NodeKind(n.Type), nodeDetail(n.Type))
	}
	printDetail("%d nodes", len(nodes))
	return nil
}

// nodeDetail returns the most useful dedicated field for display.
func nodeDetail(t pagegraph.NodeType) string {
	switch v := t.(type) {
	case pagegraph.HTMLElement:
		if v.IsDeleted {
			return "<" + v.TagName + "> (deleted)"
		}
		return "<" + v.TagName + ">"
	case pagegraph.TextNode:
		return strings.TrimSpace(v.Text)
	case pagegraph.DOMRoot:
		return v.URL
	case pagegraph.FrameOwner:
		return "<" + v.TagName + ">"
	case pagegraph.Script:
		return v.ScriptType
	case pagegraph.Resource:
		return v.URL
	case pagegraph.WebAPI:
		return v.Method
	case pagegraph.JSBuiltin:
		return v.Method
	case pagegraph.Storage:
		return v.StorageType
	default:
		return ""
	}
}

// newEdgesCmd creates the edges listing command.
func newEdgesCmd() *cobra.Command {
	var opts listOpts

	cmd := &cobra.Command{
		Use:   "edges <file.graphml>",
		Short: "List the typed edges of a recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := decodeGraph(cmd.Context(), args[0], opts.lenient)
			if err != nil {
				return err
			}
			return listEdges(g, &opts)
		},
	}

	cmd.Flags().BoolVar(&opts.lenient, "lenient", false, "keep unrecognized elements as unknown instead of failing")
	cmd.Flags().StringVar(&opts.kind, "kind", "", "only show edges of this kind (e.g. \"request start\")")

	return cmd
}

func listEdges(g *pagegraph.Graph, opts *listOpts) error {
	var edges []*pagegraph.Edge
	if opts.kind != "" {
		edges = g.FilterEdges(func(t pagegraph.EdgeType) bool {
			return pagegraph.EdgeKind(t) == opts.kind
		})
	} else {
		edges = g.Edges()
	}

	for _, e := range edges {
		fmt.Printf("%-12s %-10s %s %-10s %s\n", e.ID, e.Source, iconArrow, e.Target, pagegraph.EdgeKind(e.Type))
	}
	printDetail("%d edges", len(edges))
	return nil
}

// newQueryCmd creates the query command with structural query subcommands.
func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run structural queries against a recording",
	}

	cmd.AddCommand(newRootURLCmd())
	cmd.AddCommand(newModificationsCmd())
	cmd.AddCommand(newResourcesCmd())
	cmd.AddCommand(newDownstreamCmd())
	cmd.AddCommand(newFilterCmd())

	return cmd
}

// newRootURLCmd creates the "query root-url" subcommand.
func newRootURLCmd() *cobra.Command {
	var lenient bool

	cmd := &cobra.Command{
		Use:   "root-url <file.graphml>",
		Short: "Print the URL of the page the recording was made from",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := decodeGraph(cmd.Context(), args[0], lenient)
			if err != nil {
				return err
			}
			url, err := g.RootURL()
			if err != nil {
				return err
			}
			fmt.Println(url)
			return nil
		},
	}

	cmd.Flags().BoolVar(&lenient, "lenient", false, "keep unrecognized elements as unknown instead of failing")
	return cmd
}

// newModificationsCmd creates the "query modifications" subcommand.
func newModificationsCmd() *cobra.Command {
	var lenient bool

	cmd := &cobra.Command{
		Use:   "modifications <file.graphml> <node-id>",
		Short: "List the modification history of an HTML element",
		Long: `List every modification of an HTML element node during the page
load, sorted by timestamp: attribute writes, removals, deletions.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := decodeGraph(cmd.Context(), args[0], lenient)
			if err != nil {
				return err
			}
			mods, err := g.HTMLElementModifications(pagegraph.NodeID(args[1]))
			if err != nil {
				return err
			}
			for _, e := range mods {
				ts := "-"
				if e.Timestamp != nil {
					ts = fmt.Sprintf("%d", *e.Timestamp)
				}
				fmt.Printf("%-12s %-24s ts=%s %s\n", e.ID, pagegraph.EdgeKind(e.Type), ts, edgeDetail(e.Type))
			}
			printDetail("%d modifications", len(mods))
			return nil
		},
	}

	cmd.Flags().BoolVar(&lenient, "lenient", false, "keep unrecognized elements as unknown instead of failing")
	return cmd
}

// edgeDetail returns the most useful dedicated fields for display.
func edgeDetail(t pagegraph.EdgeType) string {
	switch v := t.(type) {
	case pagegraph.SetAttribute:
		return fmt.Sprintf("%s=%q", v.Key, v.Value)
	case pagegraph.DeleteAttribute:
		return v.Key
	case pagegraph.ExecuteFromAttribute:
		return v.AttrName
	case pagegraph.RequestStart:
		return fmt.Sprintf("request=%d type=%s", v.RequestID, v.RequestType)
	case pagegraph.RequestComplete:
		return fmt.Sprintf("request=%d status=%s size=%d", v.RequestID, v.Status, v.Size)
	case pagegraph.JSCall:
		return v.Method
	case pagegraph.StorageSet:
		return fmt.Sprintf("%s=%q", v.Key, v.Value)
	case pagegraph.StorageRead:
		return v.Key
	case pagegraph.StorageDelete:
		return v.Key
	default:
		return ""
	}
}

// newResourcesCmd creates the "query resources" subcommand.
func newResourcesCmd() *cobra.Command {
	var lenient bool

	cmd := &cobra.Command{
		Use:   "resources <file.graphml> <node-id>",
		Short: "List the resources fetched by a script",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := decodeGraph(cmd.Context(), args[0], lenient)
			if err != nil {
				return err
			}
			resources, err := g.ResourcesFromScript(pagegraph.NodeID(args[1]))
			if err != nil {
				return err
			}
			for _, n := range resources {
				fmt.Printf("%-12s %s\n", n.ID, nodeDetail(n.Type))
			}
			printDetail("%d resources", len(resources))
			return nil
		},
	}

	cmd.Flags().BoolVar(&lenient, "lenient", false, "keep unrecognized elements as unknown instead of failing")
	return cmd
}

// newFilterCmd creates the "query filter" subcommand.
func newFilterCmd() *cobra.Command {
	var lenient bool

	cmd := &cobra.Command{
		Use:   "filter <file.graphml> <pattern>",
		Short: "List the resources matching an adblock-style filter",
		Long: `List the resource nodes whose request matches an adblock-style
filter pattern.

A plain pattern matches as a substring of the request URL; "||host^"
matches the host and its subdomains. Options after "$" constrain the
recorded request type (script, image, stylesheet, ...) or the party
relative to the page's root URL (first-party, third-party).

Examples:
  pagegraph query filter page.graphml "||tracker.example^"
  pagegraph query filter page.graphml "$image,third-party"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := decodeGraph(cmd.Context(), args[0], lenient)
			if err != nil {
				return err
			}
			matches, err := g.ResourcesMatchingFilter(args[1])
			if err != nil {
				return err
			}
			for _, n := range matches {
				fmt.Printf("%-12s %s\n", n.ID, nodeDetail(n.Type))
			}
			printDetail("%d matching resources", len(matches))
			return nil
		},
	}

	cmd.Flags().BoolVar(&lenient, "lenient", false, "keep unrecognized elements as unknown instead of failing")
	return cmd
}

// newDownstreamCmd creates the "query downstream" subcommand.
func newDownstreamCmd() *cobra.Command {
	var lenient, direct bool

	cmd := &cobra.Command{
		Use:   "downstream <file.graphml> <node-id>",
		Short: "List the downstream effects of a node",
		Long: `List the nodes caused by the given node during the page load.

By default the full transitive closure is reported in discovery order;
with --direct only the immediate effects are shown.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := decodeGraph(cmd.Context(), args[0], lenient)
			if err != nil {
				return err
			}

			id := pagegraph.NodeID(args[1])
			var effects []*pagegraph.Node
			if direct {
				effects, err = g.DirectDownstreamEffects(id)
			} else {
				effects, err = g.DownstreamEffects(id)
			}
			if err != nil {
				return err
			}

			for _, n := range effects {
				fmt.Printf("%-12s %-24s %s\n", n.ID, pagegraph.NodeKind(n.Type), nodeDetail(n.Type))
			}
			printDetail("%d effects", len(effects))
			return nil
		},
	}

	cmd.Flags().BoolVar(&lenient, "lenient", false, "keep unrecognized elements as unknown instead of failing")
	cmd.Flags().BoolVar(&direct, "direct", false, "only show immediate effects")
	return cmd
}
