package main

import "github.com/crewbooks/crewbooks/internal/service"

func main() {
	service.Run()
}
