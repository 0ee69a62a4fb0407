package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/cognicore/termrel/pkg/termrel/relation"
)

func relationsCmd(g *globalOptions) *cobra.Command {
	var (
		jo     jobOptions
		dbPath string
		seeds  []string
	)

	cmd := &cobra.Command{
		Use:   "relations [corpus.jsonl...]",
		Short: "Collect entity-marked sentences for every pair of co-occurring terms",
		Long: `Collect entity-marked sentences for every ordered pair of terms found in
the same sentence. Pairs already listed under a relation in the database are
added there; all others go to the no-relation bucket.

The database is read from and written back to --db (YAML), or to the store
when --db is empty and --store-engine is set.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			comp, err := g.components()
			if err != nil {
				return err
			}
			terms, err := readTerms(jo.terms)
			if err != nil {
				return err
			}
			s, err := g.openStore(ctx)
			if err != nil {
				return err
			}
			if s != nil {
				defer s.Close()
			}
			if dbPath == "" && s == nil {
				return fmt.Errorf("either --db or --store-engine is required")
			}

			var db relation.DB
			if dbPath != "" {
				db, err = relation.Load(dbPath)
			} else {
				db, err = s.LoadRelations(ctx)
			}
			if err != nil {
				return fmt.Errorf("load relations: %w", err)
			}
			relation.Merge(db, relation.NewDB(seeds...))

			for i, path := range args {
				log.Printf("Collecting relations from %s: corpus %d/%d", path, i+1, len(args))
				out, err := runCorpus(ctx, cmd.ErrOrStderr(), &jo, comp.Tagger(), terms, db, path)
				if err != nil {
					return err
				}
				if err := record(ctx, s, out); err != nil {
					return err
				}
			}

			for _, r := range append(db.Relations(), relation.NoRelation) {
				log.Printf("%s: %d pairs", r, len(db.Pairs(r)))
			}

			if dbPath != "" {
				err = relation.Save(dbPath, db)
			} else {
				err = s.SaveRelations(ctx, db)
			}
			if err != nil {
				return fmt.Errorf("save relations: %w", err)
			}
			return nil
		},
	}

	jo.register(cmd)
	cmd.Flags().StringVar(&dbPath, "db", "", "Relation database YAML file")
	cmd.Flags().StringSliceVar(&seeds, "relation", nil, "Relation bucket to create if missing, repeatable")
	return cmd
}
