// SPDX-License-Identifier: MPL-2.0

package main

import (
	cmd "appstart-cli/cmd/appstart"
)

func main() {
	cmd.Execute()
}
