package main

import "github.com/Zhima-Mochi/fooddelivery/internal/cmd"

func main() {
	cmd.Execute()
}
