package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
)

// MarkdownHelpPrinter is a kong.HelpPrinter that formats help for the whole command
// tree as a markdown document.
func MarkdownHelpPrinter(options kong.HelpOptions, ctx *kong.Context) error {
	w := ctx.Stdout
	if w == nil {
		w = io.Discard
	}
	root := ctx.Model.Node

	fmt.Fprintf(w, "# %s\n\n", ctx.Model.Name)
	if root.Help != "" && !options.NoAppSummary {
		fmt.Fprintf(w, "%s\n\n", root.Help)
	}
	if root.Detail != "" {
		fmt.Fprintf(w, "%s\n\n", root.Detail)
	}

	var global []*kong.Flag
	for _, flag := range ctx.Model.Flags {
		if !flag.Hidden && flag.Name != "help" {
			global = append(global, flag)
		}
	}
	if len(global) > 0 {
		fmt.Fprintf(w, "## Global Flags\n\n")
		for _, flag := range global {
			writeFlag(w, flag)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "## Commands\n\n")
	writeCommands(w, root, ctx.Model.Name, 3)
	return nil
}

func writeCommands(w io.Writer, node *kong.Node, prefix string, level int) {
	for _, child := range node.Children {
		if child.Hidden || child.Type != kong.CommandNode {
			continue
		}
		path := prefix + " " + child.Name
		fmt.Fprintf(w, "%s `%s`\n\n", strings.Repeat("#", level), path)
		if child.Help != "" {
			fmt.Fprintf(w, "%s\n\n", child.Help)
		}
		if isDefault(node, child) {
			fmt.Fprintf(w, "_This is the default command._\n\n")
		}
		fmt.Fprintf(w, "```\n%s\n```\n\n", usage(path, child))

		if len(child.Positional) > 0 {
			fmt.Fprintf(w, "**Arguments:**\n\n")
			for _, arg := range child.Positional {
				fmt.Fprintf(w, "- `%s`", strings.ToUpper(arg.Name))
				if arg.Help != "" {
					fmt.Fprintf(w, " - %s", arg.Help)
				}
				fmt.Fprintln(w)
			}
			fmt.Fprintln(w)
		}

		var flags []*kong.Flag
		for _, flag := range child.Flags {
			if !flag.Hidden {
				flags = append(flags, flag)
			}
		}
		if len(flags) > 0 {
			fmt.Fprintf(w, "**Flags:**\n\n")
			for _, flag := range flags {
				writeFlag(w, flag)
			}
			fmt.Fprintln(w)
		}

		writeCommands(w, child, path, level+1)
	}
}

func isDefault(parent, child *kong.Node) bool {
	return parent.DefaultCmd == child
}

func writeFlag(w io.Writer, flag *kong.Flag) {
	var sig strings.Builder
	sig.WriteString("`")
	if flag.Short != 0 {
		fmt.Fprintf(&sig, "-%c, ", flag.Short)
	}
	fmt.Fprintf(&sig, "--%s`", flag.Name)
	if !flag.IsBool() {
		fmt.Fprintf(&sig, " _%s_", flag.FormatPlaceHolder())
	}

	fmt.Fprintf(w, "- %s", sig.String())
	if flag.Help != "" {
		fmt.Fprintf(w, " - %s", flag.Help)
	}
	if flag.Enum != "" {
		fmt.Fprintf(w, " (one of: `%s`)", strings.ReplaceAll(flag.Enum, ",", "`, `"))
	}
	if flag.Default != "" {
		fmt.Fprintf(w, " (default: `%s`)", flag.Default)
	}
	fmt.Fprintln(w)
}

func usage(path string, node *kong.Node) string {
	u := path
	if len(node.Flags) > 0 {
		u += " [flags]"
	}
	for _, arg := range node.Positional {
		name := strings.ToUpper(arg.Name)
		if arg.Required {
			u += " <" + name + ">"
		} else {
			u += " [" + name + "]"
		}
		if arg.IsSlice() {
			u += "..."
		}
	}
	return u
}
