// Copyright 2025 Albin Suresh
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var connectFlags struct {
	endpoint   string
	credential string
}

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect to a remote replica and run an initial sync",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		endpoint := connectFlags.endpoint
		credential := connectFlags.credential
		if endpoint == "" {
			endpoint = a.cfg.RemoteEndpoint
			credential = a.cfg.RemoteCredential
		}
		if endpoint == "" {
			return fmt.Errorf("no endpoint given and GRACEPACK_REMOTE_ENDPOINT unset")
		}

		if !a.service.ConnectRemote(cmd.Context(), endpoint, credential) {
			return fmt.Errorf("could not connect to %s", endpoint)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "connected")
		return nil
	},
}

var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Drop the remote session and forget its configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.service.DisconnectRemote(cmd.Context())
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a full reconciliation pass now",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		merged, err := a.service.SyncNow(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "in sync: %d bills\n", len(merged))
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase the whole local collection (remote configuration is kept)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if !confirm(cmd, "erase every local bill?") {
			return nil
		}
		return a.service.Reset(cmd.Context())
	},
}

func init() {
	connectCmd.Flags().StringVar(&connectFlags.endpoint, "endpoint", "", "postgres:// URL of the remote replica")
	connectCmd.Flags().StringVar(&connectFlags.credential, "credential", "", "password overriding the endpoint URL's")

	RootCmd.AddCommand(connectCmd, disconnectCmd, syncCmd, resetCmd)
}
