// Command rapidstash is a CLI front end for the store package, useful for
// inspecting and scripting against a backing file without writing Go.
package main

func main() {
	Execute()
}
