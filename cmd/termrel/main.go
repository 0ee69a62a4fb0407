// Command termrel tags preprocessed corpora with term vocabularies and
// collects relation training sentences.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cognicore/termrel/pkg/termrel/config"
	"github.com/cognicore/termrel/pkg/termrel/corpus"
	"github.com/cognicore/termrel/pkg/termrel/nlp"
	"github.com/cognicore/termrel/pkg/termrel/store"
	_ "github.com/cognicore/termrel/pkg/termrel/store/boltdb"
	_ "github.com/cognicore/termrel/pkg/termrel/store/memstore"
	_ "github.com/cognicore/termrel/pkg/termrel/store/sqlite"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalOptions are shared by every subcommand.
type globalOptions struct {
	stoplistPath   string
	classifierPath string
	matcherPath    string
	lexiconPath    string
	classify       bool
	storeEngine    string
	storePath      string
}

func rootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "termrel",
		Short: "Tag corpora with key terms and collect relation sentences",
		Long: `Tag preprocessed sentences with key terms for term extraction and
relation extraction training.

Corpora and term lists are JSONL files, one sentence or term per line, each
line a JSON array of {"text","lemma","pos","tag","ws"} tokens.

Examples:
  termrel tag --terms terms.jsonl --out tagged Biology_2e.jsonl
  termrel relations --terms terms.jsonl --db relations.yaml Biology_2e.jsonl
  termrel counts --store-engine sqlite --store termrel.db Biology_2e
  termrel eval --gold gold_tags.txt --pred Biology_2e_sentence_tags.txt Biology_2e_tokenized_sentences.txt
`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.stoplistPath, "stoplist", "", "Stoplist YAML (default: built-in English list)")
	pf.StringVar(&opts.classifierPath, "classifier", "", "Term classifier rules YAML (implies --classify)")
	pf.StringVar(&opts.matcherPath, "matcher", "", "Matcher options YAML")
	pf.StringVar(&opts.lexiconPath, "lexicon", "", "Term variant lexicon YAML")
	pf.BoolVar(&opts.classify, "classify", false, "Classify found terms as entity or event")
	pf.StringVar(&opts.storeEngine, "store-engine", "", "Store backend: "+strings.Join(store.Engines(), ", "))
	pf.StringVar(&opts.storePath, "store", "", "Store path")

	cmd.AddCommand(tagCmd(opts))
	cmd.AddCommand(relationsCmd(opts))
	cmd.AddCommand(countsCmd(opts))
	cmd.AddCommand(runsCmd(opts))
	cmd.AddCommand(evalCmd())

	return cmd
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func (o *globalOptions) components() (*config.Components, error) {
	loader := config.Loader{
		StoplistPath:   o.stoplistPath,
		ClassifierPath: o.classifierPath,
		MatcherPath:    o.matcherPath,
		LexiconPath:    o.lexiconPath,
		Classify:       o.classify,
	}
	return loader.Load()
}

// openStore returns nil when no store engine is configured.
func (o *globalOptions) openStore(ctx context.Context) (store.Store, error) {
	if o.storeEngine == "" {
		return nil, nil
	}
	s, err := store.Open(ctx, o.storeEngine, o.storePath)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", o.storeEngine, err)
	}
	return s, nil
}

func (o *globalOptions) requireStore(ctx context.Context) (store.Store, error) {
	if o.storeEngine == "" {
		return nil, fmt.Errorf("--store-engine is required")
	}
	return o.openStore(ctx)
}

// readTerms loads and concatenates term lists.
func readTerms(paths []string) ([]nlp.Doc, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("at least one --terms file is required")
	}
	var terms []nlp.Doc
	for _, p := range paths {
		docs, err := corpus.ReadDocs(p)
		if err != nil {
			return nil, fmt.Errorf("read terms: %w", err)
		}
		log.Printf("Loaded %d terms from %s", len(docs), p)
		terms = append(terms, docs...)
	}
	return terms, nil
}

// corpusName derives the artifact name of a corpus file: its base name
// without extension.
func corpusName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
