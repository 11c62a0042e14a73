// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jblachly/pyrdt"
)

// tableFlags are the boolean selectors shared by the dump command,
// grounded on pedumper.go's own per-directory boolean flag set.
type tableFlags struct {
	settings  bool
	channels  bool
	contacts  bool
	rxgroups  bool
	scanlists bool
	messages  bool
	zones     bool
	all       bool
	verbose   bool
}

var flags tableFlags

func selectedKinds(f tableFlags) []pyrdt.TableKind {
	if f.all {
		return []pyrdt.TableKind{
			pyrdt.Settings, pyrdt.Channel, pyrdt.Contact, pyrdt.RxGroup,
			pyrdt.Scanlist, pyrdt.Textmessage, pyrdt.Zone,
		}
	}
	var kinds []pyrdt.TableKind
	if f.settings {
		kinds = append(kinds, pyrdt.Settings)
	}
	if f.channels {
		kinds = append(kinds, pyrdt.Channel)
	}
	if f.contacts {
		kinds = append(kinds, pyrdt.Contact)
	}
	if f.rxgroups {
		kinds = append(kinds, pyrdt.RxGroup)
	}
	if f.scanlists {
		kinds = append(kinds, pyrdt.Scanlist)
	}
	if f.messages {
		kinds = append(kinds, pyrdt.Textmessage)
	}
	if f.zones {
		kinds = append(kinds, pyrdt.Zone)
	}
	return kinds
}

func parseKind(s string) (pyrdt.TableKind, error) {
	switch s {
	case "settings":
		return pyrdt.Settings, nil
	case "channel", "channels":
		return pyrdt.Channel, nil
	case "contact", "contacts":
		return pyrdt.Contact, nil
	case "rxgroup", "rxgroups":
		return pyrdt.RxGroup, nil
	case "scanlist", "scanlists":
		return pyrdt.Scanlist, nil
	case "textmessage", "messages":
		return pyrdt.Textmessage, nil
	case "zone", "zones":
		return pyrdt.Zone, nil
	}
	return 0, fmt.Errorf("unknown table kind %q", s)
}

func runDump(cmd *cobra.Command, args []string) error {
	kinds := selectedKinds(flags)
	if len(kinds) == 0 {
		kinds = []pyrdt.TableKind{pyrdt.Settings}
	}

	img, err := pyrdt.ImageFromFile(args[0], nil)
	if err != nil {
		return fmt.Errorf("opening %s: %w", args[0], err)
	}
	if err := img.Load(); err != nil {
		return fmt.Errorf("loading %s: %w", args[0], err)
	}

	for _, kind := range kinds {
		t, err := img.Table(kind)
		if err != nil {
			return err
		}
		fmt.Printf("== %s ==\n", kind)
		if err := pyrdt.RenderTable(os.Stdout, t); err != nil {
			return err
		}
	}
	if flags.verbose {
		for _, a := range img.Anomalies() {
			fmt.Fprintln(os.Stderr, "anomaly:", a)
		}
	}
	return nil
}

var exportTableName, exportOut string

func runExport(cmd *cobra.Command, args []string) error {
	kind, err := parseKind(exportTableName)
	if err != nil {
		return err
	}
	img, err := pyrdt.ImageFromFile(args[0], nil)
	if err != nil {
		return fmt.Errorf("opening %s: %w", args[0], err)
	}
	if err := img.Load(); err != nil {
		return fmt.Errorf("loading %s: %w", args[0], err)
	}
	t, err := img.Table(kind)
	if err != nil {
		return err
	}

	f, err := os.Create(exportOut)
	if err != nil {
		return fmt.Errorf("creating %s: %w", exportOut, err)
	}
	defer f.Close()
	return pyrdt.ExportCSV(f, t)
}

var importTableName, importIn, importOut string

func runImport(cmd *cobra.Command, args []string) error {
	kind, err := parseKind(importTableName)
	if err != nil {
		return err
	}
	img, err := pyrdt.ImageFromFile(args[0], nil)
	if err != nil {
		return fmt.Errorf("opening %s: %w", args[0], err)
	}
	if err := img.Load(); err != nil {
		return fmt.Errorf("loading %s: %w", args[0], err)
	}
	t, err := img.Table(kind)
	if err != nil {
		return err
	}

	f, err := os.Open(importIn)
	if err != nil {
		return fmt.Errorf("opening %s: %w", importIn, err)
	}
	defer f.Close()
	if err := pyrdt.ImportCSV(f, t); err != nil {
		return fmt.Errorf("importing %s into %s: %w", importIn, kind, err)
	}

	return pyrdt.DumpToFile(img, importOut)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "codeplugctl",
		Short: "A Tytera MD-380 codeplug file editor",
		Long:  "codeplugctl reads, pretty-prints, and edits Tytera MD-380 codeplug images",
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(pyrdt.Version)
		},
	}

	dumpCmd := &cobra.Command{
		Use:          "dump <file>",
		Short:        "Pretty-print one or more tables of a codeplug",
		Args:         cobra.ExactArgs(1),
		RunE:         runDump,
		SilenceUsage: true,
	}
	dumpCmd.Flags().BoolVar(&flags.settings, "settings", false, "Dump the Settings table")
	dumpCmd.Flags().BoolVar(&flags.channels, "channels", false, "Dump the Channel table")
	dumpCmd.Flags().BoolVar(&flags.contacts, "contacts", false, "Dump the Contact table")
	dumpCmd.Flags().BoolVar(&flags.rxgroups, "rxgroups", false, "Dump the RxGroup table")
	dumpCmd.Flags().BoolVar(&flags.scanlists, "scanlists", false, "Dump the Scanlist table")
	dumpCmd.Flags().BoolVar(&flags.messages, "messages", false, "Dump the Textmessage table")
	dumpCmd.Flags().BoolVar(&flags.zones, "zones", false, "Dump the Zone table")
	dumpCmd.Flags().BoolVar(&flags.all, "all", false, "Dump every table")
	dumpCmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Also print load anomalies")

	exportCmd := &cobra.Command{
		Use:          "export <file>",
		Short:        "Export one table's rows to CSV",
		Args:         cobra.ExactArgs(1),
		RunE:         runExport,
		SilenceUsage: true,
	}
	exportCmd.Flags().StringVar(&exportTableName, "table", "", "Table kind to export (required)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Destination CSV path (required)")
	exportCmd.MarkFlagRequired("table")
	exportCmd.MarkFlagRequired("out")

	importCmd := &cobra.Command{
		Use:          "import <file>",
		Short:        "Import a CSV into one table's rows and dump a new codeplug",
		Args:         cobra.ExactArgs(1),
		RunE:         runImport,
		SilenceUsage: true,
	}
	importCmd.Flags().StringVar(&importTableName, "table", "", "Table kind to import (required)")
	importCmd.Flags().StringVar(&importIn, "in", "", "Source CSV path (required)")
	importCmd.Flags().StringVar(&importOut, "out", "", "Destination codeplug path (required)")
	importCmd.MarkFlagRequired("table")
	importCmd.MarkFlagRequired("in")
	importCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(versionCmd, dumpCmd, exportCmd, importCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
