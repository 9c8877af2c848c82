package main

import "inspection-scraper/commands"

func main() {
	commands.Main()
}
