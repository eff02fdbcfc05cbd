package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"testwatch/internal/testpath"
)

var resolveExisting bool

var resolveCmd = &cobra.Command{
	Use:   "resolve <source-file>...",
	Short: "Resolve the conventional test file for source files",
	Long: `Map source files to their conventional sibling test files
(src/utils/math.ts -> src/utils/math.test.ts).

With --existing, only test files present on disk are printed; sources whose
test file is missing exit with status 1.`,
	Args: cobra.MinimumNArgs(1),
	Run:  runResolve,
}

func init() {
	resolveCmd.Flags().BoolVar(&resolveExisting, "existing", false, "Only print test files that exist on disk")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) {
	resolver := testpath.NewResolver()
	missing := false

	for _, source := range args {
		if !testpath.IsSourceFile(source) {
			fmt.Fprintf(os.Stderr, "skipping %s: not a source file\n", source)
			continue
		}
		testFile := resolver.ResolveTestPath(source)
		if testFile == "" {
			fmt.Fprintf(os.Stderr, "skipping %s: no test convention for extension\n", source)
			continue
		}
		if resolveExisting && !resolver.Exists(testFile) {
			missing = true
			continue
		}
		fmt.Println(testFile)
	}

	if missing {
		os.Exit(1)
	}
}
