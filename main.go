package main

import (
	"log"

	"zawa/cmd/zawa"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("zawa: ")
	if err := zawa.Execute(); err != nil {
		log.Fatal(err)
	}
}
