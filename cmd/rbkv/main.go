package main

import "github.com/ValentinKolb/rbKV/cmd"

func main() {
	cmd.Execute()
}
