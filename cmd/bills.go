// Copyright 2025 Albin Suresh
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Albinsuresh2510/gracepackingai/billsync"
)

var addFlags struct {
	customer  string
	address   string
	invoiceNo string
	billDate  string
	entryDate string
	boxes     int
	delivery  bool
	force     bool
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new pending bill",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()

		// Duplicate detection runs strictly before the record is built. The
		// operator either discards the capture or confirms a second,
		// independent record.
		if dup := a.service.CheckDuplicate(ctx, addFlags.invoiceNo); dup != nil && !addFlags.force {
			fmt.Fprintf(cmd.OutOrStdout(),
				"invoice %q already recorded for %s on %s\n",
				dup.InvoiceNo, dup.CustomerName, dup.EntryDate)
			if !confirm(cmd, "create a second independent bill anyway?") {
				fmt.Fprintln(cmd.OutOrStdout(), "discarded")
				return nil
			}
		}

		rec, err := a.service.CreateRecord(ctx, billsync.NewRecord{
			ExtractedFields: billsync.ExtractedFields{
				CustomerName: addFlags.customer,
				Address:      addFlags.address,
				InvoiceNo:    addFlags.invoiceNo,
				BillDate:     addFlags.billDate,
			},
			EntryDate: addFlags.entryDate,
			Delivery:  addFlags.delivery,
			BoxCount:  addFlags.boxes,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", rec.ID)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list [entry-date]",
	Short: "List bills, optionally for one workday",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if len(args) == 1 {
			printRecords(cmd, a.service.ListForDay(cmd.Context(), args[0]))
			return nil
		}
		for _, g := range a.service.ListDayGroups(cmd.Context()) {
			fmt.Fprintf(cmd.OutOrStdout(), "== %s\n", g.EntryDate)
			printRecords(cmd, g.Records)
		}
		return nil
	},
}

var backlogCmd = &cobra.Command{
	Use:   "backlog",
	Short: "List pending bills carried over from earlier workdays",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		today := time.Now().Format("2006-01-02")
		printRecords(cmd, a.service.ListBacklog(cmd.Context(), today))
		return nil
	},
}

var packCmd = &cobra.Command{
	Use:   "pack <id>...",
	Short: "Mark bills as packed",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if len(args) == 1 {
			rec, err := a.service.TogglePacked(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", rec.ID, rec.Status)
			return nil
		}
		return a.service.BatchApply(cmd.Context(), args, billsync.BulkPack{})
	},
}

var groupFlags struct {
	label string
	color string
}

var groupCmd = &cobra.Command{
	Use:   "group <id>...",
	Short: "Set the group label and color tag on bills",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		return a.service.BatchApply(cmd.Context(), args, billsync.GroupEdit{
			Description: groupFlags.label,
			ColorTheme:  groupFlags.color,
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete bills locally and from the remote replica",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if len(args) == 1 {
			return a.service.DeleteRecord(cmd.Context(), args[0])
		}
		return a.service.BatchApply(cmd.Context(), args, billsync.BulkDelete{})
	},
}

var quickaddFlags struct {
	entryDate string
}

var quickaddCmd = &cobra.Command{
	Use:   "quickadd <count>",
	Short: "Create blank additional bills for a workday",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		var count int
		if _, err := fmt.Sscanf(args[0], "%d", &count); err != nil {
			return fmt.Errorf("invalid count %q", args[0])
		}
		added, err := a.service.QuickAdd(cmd.Context(), count, quickaddFlags.entryDate)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added %d bills\n", len(added))
		return nil
	},
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func init() {
	addCmd.Flags().StringVar(&addFlags.customer, "customer", "", "customer name")
	addCmd.Flags().StringVar(&addFlags.address, "address", "", "delivery address")
	addCmd.Flags().StringVar(&addFlags.invoiceNo, "invoice", "", "invoice number")
	addCmd.Flags().StringVar(&addFlags.billDate, "bill-date", "", "bill date (YYYY-MM-DD)")
	addCmd.Flags().StringVar(&addFlags.entryDate, "entry-date", "", "workday the bill belongs to (default today)")
	addCmd.Flags().IntVar(&addFlags.boxes, "boxes", 0, "box count")
	addCmd.Flags().BoolVar(&addFlags.delivery, "delivery", false, "delivery bill")
	addCmd.Flags().BoolVar(&addFlags.force, "force", false, "skip the duplicate confirmation")

	groupCmd.Flags().StringVar(&groupFlags.label, "label", "", "group label")
	groupCmd.Flags().StringVar(&groupFlags.color, "color", "", "color tag")

	quickaddCmd.Flags().StringVar(&quickaddFlags.entryDate, "entry-date", "", "workday (default today)")

	RootCmd.AddCommand(addCmd, listCmd, backlogCmd, packCmd, groupCmd, deleteCmd, quickaddCmd)
}
