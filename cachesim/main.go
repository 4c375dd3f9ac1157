// Command cachesim replays a memory trace through a line-up of cache models
// and reports their hit rates.
package main

import "github.com/sarchlab/cachesim/cachesim/cmd"

func main() {
	cmd.Execute()
}
