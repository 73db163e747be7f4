// Command dj generates personalized playlists from local listening history
// and the Audius catalog.
package main

func main() {
	Execute()
}
