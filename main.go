// Copyright 2025 Albin Suresh
// SPDX-License-Identifier: Apache-2.0

package main

import "github.com/Albinsuresh2510/gracepackingai/cmd"

func main() {
	cmd.Execute()
}
