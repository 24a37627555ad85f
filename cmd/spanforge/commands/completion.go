package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate completion script",
	Long: `To load completions:

Bash:
  $ source <(spanforge completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ spanforge completion bash > /etc/bash_completion.d/spanforge
  # macOS:
  $ spanforge completion bash > /usr/local/etc/bash_completion.d/spanforge

Zsh:
  $ spanforge completion zsh > "${fpath[1]}/_spanforge"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ spanforge completion fish | source

  # To load completions for each session, execute once:
  $ spanforge completion fish > ~/.config/fish/completions/spanforge.fish
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			fmt.Print(humanBashCompletion)
			return nil
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(os.Stdout)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// humanBashCompletion is a handcrafted, minimal bash completion script
// that avoids the robotic verbosity of auto-generated ones.
const humanBashCompletion = `
# spanforge bash completion

_spanforge_completion() {
    local cur prev opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"
    opts="compile validate expand backtest govern audit classify review export completion version help"

    case "${prev}" in
        compile)
            COMPREPLY=( $(compgen -W "--input --targets --model --strict --publish --help" -- ${cur}) )
            return 0
            ;;
        validate)
            COMPREPLY=( $(compgen -W "--input --rules --model --targets --strict --report --help" -- ${cur}) )
            return 0
            ;;
        expand)
            COMPREPLY=( $(compgen -W "--input --out --help" -- ${cur}) )
            return 0
            ;;
        backtest)
            COMPREPLY=( $(compgen -W "--patterns --clean --labeled --out --help" -- ${cur}) )
            return 0
            ;;
        govern)
            COMPREPLY=( $(compgen -W "--expansions --backtest --policy --out --help" -- ${cur}) )
            return 0
            ;;
        audit)
            COMPREPLY=( $(compgen -W "verify tail --help" -- ${cur}) )
            return 0
            ;;
        classify)
            COMPREPLY=( $(compgen -W "--rules --doc --help" -- ${cur}) )
            return 0
            ;;
        review|export)
            COMPREPLY=( $(compgen -W "--run --format --help" -- ${cur}) )
            return 0
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh fish powershell" -- ${cur}) )
            return 0
            ;;
        --targets)
            COMPREPLY=( $(compgen -W "regex sql json python" -- ${cur}) )
            return 0
            ;;
        *)
            ;;
    esac

    # Global Flags
    if [[ ${cur} == -* ]] ; then
        COMPREPLY=( $(compgen -W "--help --version --audit-log --out --config --verbose --headless" -- ${cur}) )
        return 0
    fi

    # Subcommands
    COMPREPLY=( $(compgen -W "${opts}" -- ${cur}) )
}

complete -F _spanforge_completion spanforge
`
