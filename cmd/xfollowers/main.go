// Command xfollowers extracts the followers of an X profile to CSV or serves
// the extraction over HTTP.
package main

func main() {
	Execute()
}
