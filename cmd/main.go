package main

import (
	cmd "github.com/kerbaras/mangadir/cmd/mangadir"
)

func main() {
	cmd.Execute()
}
