// locmerge carries re-authored game text into an existing translation.
package main

import "locmerge/internal/cli"

func main() {
	cli.Execute()
}
