package main

import "github.com/kmchl/Deidentification-App/cmd"

func main() {
	cmd.Execute()
}
