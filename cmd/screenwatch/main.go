// Command screenwatch watches a window for on-screen metrics and raises
// alerts when they cross their limits.
package main

func main() {
	Execute()
}
