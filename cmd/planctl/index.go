package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"lg/weight-planner-api/internal/advisor"
	"lg/weight-planner-api/internal/vectorstore"
)

var (
	indexOut       string
	indexChunkSize int
	indexOverlap   int
)

var indexCmd = &cobra.Command{
	Use:   "index-docs <file>...",
	Short: "Chunk and embed reference documents",
	Long: `Split text documents into overlapping chunks, embed them and store them
for retrieval. The source label of each chunk is the file name without its
extension, so only files named after an allowed source are ever retrieved.

With --out the chunks go to a JSON index file (use it via DOC_INDEX_PATH);
otherwise they are written to the doc_chunks table.

EXAMPLES:

  planctl index-docs docs/Human_Nut.txt docs/Exercise_Guidelines.txt
  planctl index-docs docs/*.txt --out index.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		docs, err := chunkFiles(args, indexChunkSize, indexOverlap)
		if err != nil {
			return err
		}
		for _, path := range args {
			if src := vectorstore.SourceName(path); !advisor.AllowedSource(src) {
				color.Yellow("! %s is not an allowed source and will never be retrieved", src)
			}
		}

		ai, err := newClient()
		if err != nil {
			return err
		}

		if indexOut != "" {
			idx, err := vectorstore.LoadMemoryIndex(indexOut, ai)
			if errors.Is(err, fs.ErrNotExist) {
				idx = vectorstore.NewMemoryIndex(ai)
			} else if err != nil {
				return err
			}
			if err := idx.Add(ctx, docs); err != nil {
				return err
			}
			if err := idx.Save(indexOut); err != nil {
				return err
			}
			color.Green("✓ Indexed %d chunks into %s (%d total)", len(docs), indexOut, idx.Len())
			return nil
		}

		pool, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()
		store := vectorstore.NewPGStore(pool, ai)
		if err := store.Add(ctx, docs); err != nil {
			return err
		}
		total, err := store.Count(ctx)
		if err != nil {
			return err
		}
		color.Green("✓ Indexed %d chunks (%d total)", len(docs), total)
		return nil
	},
}

func init() {
	indexCmd.Flags().StringVar(&indexOut, "out", "", "write a JSON index file instead of the database")
	indexCmd.Flags().IntVar(&indexChunkSize, "chunk-size", vectorstore.DefaultChunkSize, "characters per chunk")
	indexCmd.Flags().IntVar(&indexOverlap, "overlap", vectorstore.DefaultChunkOverlap, "characters shared by neighbouring chunks")
	rootCmd.AddCommand(indexCmd)
}

// chunkFiles reads and chunks each file, labelling chunks by file name.
func chunkFiles(paths []string, size, overlap int) ([]advisor.Document, error) {
	var docs []advisor.Document
	for _, path := range paths {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, vectorstore.Chunk(string(b), vectorstore.SourceName(path), size, overlap)...)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no text found in %d file(s)", len(paths))
	}
	return docs, nil
}
