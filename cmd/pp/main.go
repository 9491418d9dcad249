// Command pp is the PetProgress CLI — a local-first daily task tracker
// where completing time-slotted tasks evolves a pet and missing them
// regresses it.
package main

import "petprogress/cmd/pp/root"

func main() {
	root.Execute()
}
