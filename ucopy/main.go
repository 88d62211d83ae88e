// Command ucopy runs copy scenarios against a model of user address spaces.
package main

import "github.com/sarchlab/ucopy/ucopy/cmd"

func main() {
	cmd.Execute()
}
