// harmock CLI - replays HAR captures as mock endpoints and finds correlated values
package main

import "github.com/getmockd/harmock/pkg/cli"

func main() {
	cli.Execute()
}
