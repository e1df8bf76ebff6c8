package main

import "placement_backend/internal/app"

func main() {
	app.Run()
}
