package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topovis/pkg/render"
	"github.com/matzehuels/topovis/pkg/style"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for topovis.

Source arguments complete to .json, .yaml and .yml files. The --format,
--match-key and --node-shape flags complete to their accepted values.

Bash:
  $ source <(topovis completion bash)
  $ topovis completion bash > /etc/bash_completion.d/topovis

Zsh (compinit must be enabled):
  $ topovis completion zsh > "${fpath[1]}/_topovis"

Fish:
  $ topovis completion fish > ~/.config/fish/completions/topovis.fish

PowerShell:
  PS> topovis completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// graphFileExts are the description formats a file source accepts.
var graphFileExts = []string{"json", "yaml", "yml"}

// completeSource completes the optional source argument to description files.
// URLs are left to the user.
func completeSource(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return graphFileExts, cobra.ShellCompDirectiveFilterFileExt
}

// completeFormats completes the last entry of a comma-separated format list.
func completeFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	prefix := ""
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix = toComplete[:i+1]
	}
	seen := make(map[string]bool)
	for _, f := range strings.Split(prefix, ",") {
		seen[strings.TrimSpace(f)] = true
	}

	var out []string
	for _, f := range render.Formats {
		if !seen[string(f)] {
			out = append(out, prefix+string(f))
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

func fixedValues(values ...string) cobra.CompletionFunc {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

// registerCompletions attaches source and flag completions to every command
// that takes them.
func registerCompletions(root *cobra.Command) {
	flags := map[string]cobra.CompletionFunc{
		"format":     completeFormats,
		"match-key":  fixedValues(string(style.MatchUID), string(style.MatchPair)),
		"node-shape": fixedValues(string(style.ShapeRect), string(style.ShapeCircle)),
	}
	for _, cmd := range root.Commands() {
		if strings.Contains(cmd.Use, "[source]") && cmd.ValidArgsFunction == nil {
			cmd.ValidArgsFunction = completeSource
		}
		for name, fn := range flags {
			if cmd.Flags().Lookup(name) != nil {
				_ = cmd.RegisterFlagCompletionFunc(name, fn)
			}
		}
	}
}
