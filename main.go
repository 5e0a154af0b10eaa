// The main package for the zoocards executable.
package main

import (
	"github.com/JakeFAU/zoocards/cmd"
)

func main() {
	cmd.Execute()
}
