// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/invowk/autolink/cmd/autolink"

func main() {
	cmd.Execute()
}
