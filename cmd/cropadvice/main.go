// Command cropadvice serves and renders crop disease advice.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	root := newRootCmd(newApp())
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "cropadvice:", err)
		os.Exit(1)
	}
}
