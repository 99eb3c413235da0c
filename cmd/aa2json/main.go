// Command aa2json converts a ShopSite .aa file to JSON.
//
// The document becomes a single JSON object. Every value is a string; a
// key with no value becomes null. Entry order is preserved.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	aa "github.com/argv-minus-one/shopsite-aa-go"
	"github.com/spf13/cobra"
)

func main() {
	var (
		pretty       bool
		indentSpaces uint8
		indentTabs   bool
		outputPath   string
	)

	cmd := &cobra.Command{
		Use:           "aa2json [FILE]",
		Short:         "Converts a ShopSite .aa file to JSON",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !pretty && (cmd.Flags().Changed("indent-spaces") || indentTabs) {
				return fmt.Errorf("indentation flags require --pretty")
			}

			input := io.Reader(os.Stdin)
			file := ""
			if len(args) == 1 {
				file = args[0]
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("opening input file: %w", err)
				}
				defer f.Close()
				input = f
			}

			output := io.Writer(os.Stdout)
			if outputPath != "" {
				f, err := os.Create(outputPath)
				if err != nil {
					return fmt.Errorf("opening output file: %w", err)
				}
				defer f.Close()
				output = f
			}

			indent := ""
			if pretty {
				indent = strings.Repeat(" ", int(indentSpaces))
				if indentTabs {
					indent = "\t"
				}
			}

			w := bufio.NewWriter(output)
			if err := convert(input, file, w, indent); err != nil {
				return fmt.Errorf("converting to JSON: %w", err)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "pretty-print the output JSON")
	cmd.Flags().Uint8VarP(&indentSpaces, "indent-spaces", "s", 4, "indent size, in spaces, when pretty-printing")
	cmd.Flags().BoolVarP(&indentTabs, "indent-tabs", "t", false, "use tabs instead of spaces for indentation when pretty-printing")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "JSON file to write to, instead of standard output")
	cmd.MarkFlagsMutuallyExclusive("indent-spaces", "indent-tabs")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// convert streams entries into a JSON object, writing keys in document
// order. Values come from the untyped view, so everything is a string or
// null.
func convert(input io.Reader, file string, output io.Writer, indent string) error {
	if _, err := io.WriteString(output, "{"); err != nil {
		return err
	}

	first := true
	for entry, err := range aa.Entries(input, file) {
		if err != nil {
			return err
		}
		if !first {
			if _, err := io.WriteString(output, ","); err != nil {
				return err
			}
		}
		first = false
		if indent != "" {
			if _, err := io.WriteString(output, "\n"+indent); err != nil {
				return err
			}
		}

		key, err := json.Marshal(entry.Key)
		if err != nil {
			return err
		}
		if _, err := output.Write(key); err != nil {
			return err
		}
		sep := ":"
		if indent != "" {
			sep = ": "
		}
		if _, err := io.WriteString(output, sep); err != nil {
			return err
		}

		encoded := []byte("null")
		if entry.HasValue {
			encoded, err = json.Marshal(entry.Value)
			if err != nil {
				return err
			}
		}
		if _, err := output.Write(encoded); err != nil {
			return err
		}
	}

	if indent != "" && !first {
		if _, err := io.WriteString(output, "\n"); err != nil {
			return err
		}
	}
	_, err := io.WriteString(output, "}\n")
	return err
}
