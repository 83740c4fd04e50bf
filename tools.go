package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/camden-git/familytreebackend/config"
	"github.com/camden-git/familytreebackend/database"
	"github.com/camden-git/familytreebackend/family"
	"github.com/camden-git/familytreebackend/merge"
	"github.com/camden-git/familytreebackend/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge two tree documents into one",
	Long: `Renumbers the incoming tree past the ids of the base tree, combines them,
repairs parent/child links and reports whatever could not be repaired.
Unrepaired inconsistencies do not fail the command.`,
	RunE: runMerge,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the saved tree to a JSON document",
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the saved tree with a JSON document",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var verifyCmd = &cobra.Command{
	Use:   "verify [file]",
	Short: "Check parent/child symmetry of a document or of the saved tree",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runVerify,
}

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List saved versions of the tree (sqlite storage only)",
	Args:  cobra.NoArgs,
	RunE:  runSnapshots,
}

func init() {
	mergeCmd.Flags().String("base", "", "base tree document (required)")
	mergeCmd.Flags().String("incoming", "", "tree document merged into the base (required)")
	mergeCmd.Flags().String("out", "-", "output path, - for stdout")
	mergeCmd.Flags().Bool("js", false, "write an ES module instead of JSON")
	_ = mergeCmd.MarkFlagRequired("base")
	_ = mergeCmd.MarkFlagRequired("incoming")

	exportCmd.Flags().String("out", "", "output path (default family-tree-YYYY-MM-DD.json)")

	verifyCmd.Flags().Bool("strict", false, "exit with an error when violations are found")

	snapshotsCmd.Flags().Uint64("limit", 20, "number of versions to list, 0 for all")
}

func readDocument(path string) (family.People, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	people, err := storage.Import(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return people, nil
}

// writeOutput writes to path, or stdout for "-".
func writeOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runMerge(cmd *cobra.Command, args []string) error {
	basePath, _ := cmd.Flags().GetString("base")
	incomingPath, _ := cmd.Flags().GetString("incoming")
	out, _ := cmd.Flags().GetString("out")
	asModule, _ := cmd.Flags().GetBool("js")

	base, err := readDocument(basePath)
	if err != nil {
		return err
	}
	incoming, err := readDocument(incomingPath)
	if err != nil {
		return err
	}

	result := merge.NewReconciler(logger).Run(base, incoming)

	write := func(w io.Writer) error { return merge.WriteJSON(w, result.People) }
	if asModule {
		write = func(w io.Writer) error { return merge.WriteJSModule(w, result.People) }
	}
	if err := writeOutput(cmd, out, write); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "merged %d + %d people into %d, %d repairs, %d unresolved\n",
		len(base), len(incoming), len(result.People), len(result.Actions), len(result.Violations))
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = storage.ExportFileName(time.Now())
	}

	adapter, closeStorage, err := openStorage(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStorage()

	people, ok, err := adapter.Load()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no saved tree in %s storage", cfg.Storage)
	}
	if err := writeOutput(cmd, out, func(w io.Writer) error { return storage.Export(w, people) }); err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{"people": len(people), "out": out}).Info("exported family tree")
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	people, err := readDocument(args[0])
	if err != nil {
		return err
	}

	adapter, closeStorage, err := openStorage(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStorage()

	if err := adapter.Save(people); err != nil {
		return fmt.Errorf("failed to save imported tree: %w", err)
	}
	logger.WithField("people", len(people)).Info("imported family tree")
	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	strict, _ := cmd.Flags().GetBool("strict")

	var people family.People
	if len(args) == 1 {
		var err error
		if people, err = readDocument(args[0]); err != nil {
			return err
		}
	} else {
		adapter, closeStorage, err := openStorage(cfg, logger)
		if err != nil {
			return err
		}
		defer closeStorage()
		var ok bool
		if people, ok, err = adapter.Load(); err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("no saved tree in %s storage", cfg.Storage)
		}
	}

	violations := merge.Verify(people)
	for _, v := range violations {
		fmt.Fprintf(cmd.OutOrStdout(), "%-22s %-10s %-10s %s\n", v.Kind, v.ParentID, v.ChildID, v.Detail)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d people, %d violations\n", len(people), len(violations))

	if strict && len(violations) > 0 {
		return fmt.Errorf("%d parent/child inconsistencies", len(violations))
	}
	return nil
}

func runSnapshots(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetUint64("limit")

	adapter, closeStorage, err := openStorage(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStorage()

	store, ok := adapter.(*database.SnapshotStore)
	if !ok {
		return fmt.Errorf("%s storage keeps no version history, use %s", cfg.Storage, config.StorageSQLite)
	}
	snaps, err := store.History(limit)
	if err != nil {
		return err
	}
	for _, s := range snaps {
		fmt.Fprintf(cmd.OutOrStdout(), "%6d  %s  %d people\n",
			s.ID, time.Unix(s.CreatedAt, 0).Format(time.RFC3339), s.PersonCount)
	}
	return nil
}
