// Command impala is the suffix-fused 6502 cross-assembler. It reads a
// single source file and writes a hex object file and a listing file
// alongside it.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brouhaha/impala/asm"
)

var rootCmd = &cobra.Command{
	Use:   "impala sourceFile",
	Short: "A two-pass 6502 cross-assembler",
	Long: `Impala assembles a single 6502 source file into an ASCII hex
object file and a source listing. The dialect spells an instruction's
addressing mode as a suffix fused onto its mnemonic (lda# for
immediate, ldax for absolute or zero-page indexed by X) rather than
inferring it from operand punctuation.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAssemble(args[0])
	},
}

func runAssemble(sourcePath string) error {
	src, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("opening source file: %w", err)
	}
	defer src.Close()

	base := strings.TrimSuffix(sourcePath, filepath.Ext(sourcePath))
	objPath := base + ".bin"
	lstPath := base + ".lst"

	obj, err := os.Create(objPath)
	if err != nil {
		return fmt.Errorf("creating object file: %w", err)
	}
	defer obj.Close()

	lst, err := os.Create(lstPath)
	if err != nil {
		return fmt.Errorf("creating listing file: %w", err)
	}
	defer lst.Close()

	driver := asm.NewDriver()
	result, err := driver.Assemble(src, obj, lst)
	if err != nil {
		for _, e := range result.Errors {
			fmt.Fprintln(os.Stderr, e.Error())
		}
		return fmt.Errorf("%d error(s)", len(result.Errors))
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
