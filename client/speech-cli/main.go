package main

import "speech_to_act/client/speech-cli/cmd"

func main() {
	cmd.Execute()
}
