// Command gearctl maintains the reference affix database and scores requests
// from the terminal.
package main

func main() {
	Execute()
}
