package main

import (
	"github.com/mengelbart/pipemod/cmdmain"
	_ "github.com/mengelbart/pipemod/subcmd"
)

func main() {
	cmdmain.Main()
}
