package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/mind-engage/gearscore/internal/affixdb"
	"github.com/mind-engage/gearscore/internal/grading/ocr"
	"github.com/mind-engage/gearscore/internal/logger"
)

// endMarker terminates pasted input on stdin.
const endMarker = "END"

var errEmptyInput = errors.New("no affix text supplied")

var (
	updateFiles       []string
	updateConcurrency int
)

// newAffixExtractor is swapped out in tests.
var newAffixExtractor = func() (ocr.AffixListExtractor, error) {
	key := viper.GetString("api-key")
	if key == "" {
		return nil, errors.New("GOOGLE_API_KEY is not set")
	}
	c := ocr.NewGeminiClient(key, viper.GetString("model"))
	c.BaseURL = viper.GetString("base-url")
	return c, nil
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Refresh the affix database from raw game text",
	Long: `Update sends raw affix listings to the language model, which sorts them into
per-class base, temper and aspect name lists, and merges the result into the
affix database. Classes present in the response replace the stored entries;
all other classes are kept.

Without --file, text is read from stdin until a line containing only END.`,
	Example: `  gearctl update < necro.txt
  gearctl update --file necro.txt --file rogue.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inputs, err := collectInputs(cmd.InOrStdin(), cmd.ErrOrStderr(), updateFiles)
		if err != nil {
			return err
		}
		ex, err := newAffixExtractor()
		if err != nil {
			return err
		}
		store, err := affixdb.Open(viper.GetString("db"))
		if err != nil {
			return err
		}
		return runUpdate(cmd.Context(), ex, store, inputs, updateConcurrency, cmd.OutOrStdout())
	},
}

func init() {
	updateCmd.Flags().StringArrayVarP(&updateFiles, "file", "f", nil, "Read affix text from file (repeatable)")
	updateCmd.Flags().IntVar(&updateConcurrency, "concurrency", 4, "Maximum number of files extracted at once")
	rootCmd.AddCommand(updateCmd)
}

type updateInput struct {
	name string
	text string
}

func collectInputs(stdin io.Reader, prompt io.Writer, files []string) ([]updateInput, error) {
	if len(files) == 0 {
		fmt.Fprintf(prompt, "Paste affix text, then type %s on its own line:\n", endMarker)
		text, err := readPasted(stdin)
		if err != nil {
			return nil, err
		}
		return []updateInput{{name: "stdin", text: text}}, nil
	}
	out := make([]updateInput, 0, len(files))
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		if strings.TrimSpace(string(b)) == "" {
			return nil, fmt.Errorf("%s: %w", f, errEmptyInput)
		}
		out = append(out, updateInput{name: f, text: string(b)})
	}
	return out, nil
}

// readPasted collects lines until the end marker or EOF.
func readPasted(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var lines []string
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == endMarker {
			break
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	text := strings.Join(lines, "\n")
	if strings.TrimSpace(text) == "" {
		return "", errEmptyInput
	}
	return text, nil
}

// runUpdate extracts every input concurrently and merges them in input order,
// so a class repeated in a later input wins.
func runUpdate(ctx context.Context, ex ocr.AffixListExtractor, store *affixdb.Store, inputs []updateInput, concurrency int, out io.Writer) error {
	if len(inputs) == 0 {
		return errEmptyInput
	}
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]affixdb.DB, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			logger.Infof("[update] extracting %s (%d bytes)", in.name, len(in.text))
			db, err := ex.ExtractAffixDB(gctx, in.text)
			if err != nil {
				return fmt.Errorf("%s: %w", in.name, err)
			}
			results[i] = db
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	merged := affixdb.DB{}
	for _, db := range results {
		merged.Merge(db)
	}
	keys, err := store.Merge(merged)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, passStyle.Render("✅ Affix database updated"))
	for _, k := range keys {
		e := merged[k]
		fmt.Fprintf(out, "  %s %s %s\n", e.Icon, headerStyle.Render(k),
			mutedStyle.Render(fmt.Sprintf("(%s: %d base, %d temper, %d aspects)", e.Label, len(e.Base), len(e.Temper), len(e.Aspects))))
	}
	fmt.Fprintln(out, mutedStyle.Render("  saved to "+store.Path()))
	return nil
}
